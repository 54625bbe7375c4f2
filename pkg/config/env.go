package config

// EnvPrefix is empty because every field carries its full MIA_* name.
const EnvPrefix = ""

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv = "MIA_APP_ENV"
	EnvPort   = "MIA_APP_PORT"

	EnvDBDSN  = "MIA_DB_DSN"
	EnvDBHost = "MIA_DB_HOST"
	EnvDBUser = "MIA_DB_USER"
	EnvDBName = "MIA_DB_NAME"

	EnvRedisURL = "MIA_REDIS_URL"

	EnvSerpAPIKey         = "MIA_SERPAPI_KEY"
	EnvTrackingBatchSize  = "MIA_TRACKING_BATCH_SIZE"
	EnvSecuritySharedKey  = "MIA_SECURITY_API_SHARED_KEY"
	EnvSecurityCronSecret = "MIA_SECURITY_CRON_SECRET"
)

// Variable names inherited from the serverless functions.
const (
	LegacyEnvSerpAPIKey   = "SERPAPI_KEY"
	LegacyEnvBatchSize    = "CHECK_PRICES_BATCH_SIZE"
	LegacyEnvCronSecret   = "CRON_SECRET"
	LegacyEnvAPISharedKey = "API_SHARED_KEY"
)

var legacyDBEnvVars = []string{EnvDBHost, EnvDBUser, EnvDBName}
