package config

const (
	EnvPrefix = "assetdesk"

	AppEnvDev  = "development"
	AppEnvProd = "production"

	EnvDBDSN  = "ASSETDESK_DB_DSN"
	EnvDBHost = "ASSETDESK_DB_HOST"
	EnvDBUser = "ASSETDESK_DB_USER"
	EnvDBName = "ASSETDESK_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
