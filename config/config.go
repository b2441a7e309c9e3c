package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT (event notifications; empty broker disables publishing)
	MQTTBroker   string
	MQTTClientID string
	MQTTUsername string
	MQTTPassword string
	MQTTTopic    string

	// Counting device
	DeviceBaseURL   string
	DeviceTimeout   time.Duration
	StatusInterval  time.Duration
	RemoteInterval  time.Duration
	RefreshInterval time.Duration

	// Application
	HTTPAddr string
	LogLevel string
	PageSize int
}

func LoadConfig() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	timeoutMs, _ := strconv.Atoi(getEnv("DEVICE_TIMEOUT_MS", "3000"))
	statusMs, _ := strconv.Atoi(getEnv("STATUS_POLL_MS", "1000"))
	remoteMs, _ := strconv.Atoi(getEnv("REMOTE_POLL_MS", "500"))
	refreshMs, _ := strconv.Atoi(getEnv("REFRESH_POLL_MS", "5000"))
	pageSize, _ := strconv.Atoi(getEnv("PAGE_SIZE", "10"))

	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "password"),
		DBName:     getEnv("DB_NAME", "bagcount_gateway"),

		RedisHost:     getEnv("REDIS_HOST", "localhost"),
		RedisPort:     getEnv("REDIS_PORT", "6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       redisDB,

		MQTTBroker:   getEnv("MQTT_BROKER", ""),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "bagcount-gateway"),
		MQTTUsername: getEnv("MQTT_USERNAME", ""),
		MQTTPassword: getEnv("MQTT_PASSWORD", ""),
		MQTTTopic:    getEnv("MQTT_TOPIC", "bagcount/events"),

		DeviceBaseURL:   getEnv("DEVICE_BASE_URL", "http://192.168.1.50"),
		DeviceTimeout:   time.Duration(timeoutMs) * time.Millisecond,
		StatusInterval:  time.Duration(statusMs) * time.Millisecond,
		RemoteInterval:  time.Duration(remoteMs) * time.Millisecond,
		RefreshInterval: time.Duration(refreshMs) * time.Millisecond,

		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		PageSize: pageSize,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
