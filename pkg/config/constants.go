package config

// EnvPrefix is passed to envconfig; individual fields carry fully qualified
// names so the prefix stays empty.
const EnvPrefix = ""

const (
	AppEnvDev  = "development"
	AppEnvProd = "production"
)

const (
	EnvDBDSN  = "REWEAR_DB_DSN"
	EnvDBHost = "REWEAR_DB_HOST"
	EnvDBUser = "REWEAR_DB_USER"
	EnvDBName = "REWEAR_DB_NAME"
)

var requiredDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
