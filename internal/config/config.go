package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort string
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	DBMaxConns int

	Timezone *time.Location

	JWTSecret          string        // HMAC key for operator tokens
	JWTExpirationHours time.Duration // token lifetime

	RedisURL                string
	CapacityCacheTTL        time.Duration
	CapacityRefreshInterval time.Duration

	AWSEnabled      bool
	AWSRegion       string
	SQSGateQueueURL string
	IoTMQTTEndpoint string

	LogFile            string
	CORSAllowedOrigins []string
}

func Load() *Config {
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		log.Printf("Config: could not load .env file: %v", err)
	}

	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	dbMaxConns, _ := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "50"))
	jwtExpHours, _ := strconv.Atoi(getEnv("JWT_EXPIRATION_HOURS", "12"))
	awsEnabled, _ := strconv.ParseBool(getEnv("AWS_ENABLED", "false"))

	tzName := getEnv("APP_TIMEZONE", "Asia/Jakarta")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		log.Printf("Config: unknown APP_TIMEZONE %q, falling back to UTC: %v", tzName, err)
		loc = time.UTC
	}

	var origins []string
	for _, o := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", ""), ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}

	return &Config{
		ServerPort: getEnv("SERVER_PORT", "8080"),
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "parking"),
		DBPassword: getEnv("DB_PASSWORD", "parking"),
		DBName:     getEnv("DB_NAME", "parking_db"),
		DBSslMode:  getEnv("DB_SSLMODE", "disable"),
		DBMaxConns: dbMaxConns,

		Timezone: loc,

		JWTSecret:          getEnv("JWT_SECRET", "change-me-in-production"),
		JWTExpirationHours: time.Duration(jwtExpHours) * time.Hour,

		RedisURL:                getEnv("REDIS_URL", ""),
		CapacityCacheTTL:        getDuration("CAPACITY_CACHE_TTL", 15*time.Second),
		CapacityRefreshInterval: getDuration("CAPACITY_REFRESH_INTERVAL", 30*time.Second),

		AWSEnabled:      awsEnabled,
		AWSRegion:       getEnv("AWS_REGION", "ap-southeast-3"),
		SQSGateQueueURL: getEnv("SQS_GATE_QUEUE_URL", ""),
		IoTMQTTEndpoint: getEnv("IOT_MQTT_ENDPOINT", ""),

		LogFile:            getEnv("LOG_FILE", ""),
		CORSAllowedOrigins: origins,
	}
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	log.Printf("Config: %s not set, using default %q", key, fallback)
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := getEnv(key, fallback.String())
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Config: invalid duration for %s (%q), using %s", key, raw, fallback)
		return fallback
	}
	return d
}
