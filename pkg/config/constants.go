package config

// EnvPrefix is the envconfig prefix shared by every binary.
const EnvPrefix = "MR"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	EnvDBDSN  = "MR_DB_DSN"
	EnvDBHost = "MR_DB_HOST"
	EnvDBUser = "MR_DB_USER"
	EnvDBName = "MR_DB_NAME"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
