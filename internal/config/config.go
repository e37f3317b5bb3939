package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Node holds the configuration for the camera node process.
type Node struct {
	// Application
	Version     string
	Environment string
	CameraID    string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Aggregator connection
	ServerURL string

	// Capture
	// Source accepts a device index ("0"), a V4L2 path or an RTSP URL.
	CaptureSource     string
	CaptureWidth      int
	CaptureHeight     int
	CaptureFPS        int
	ReconnectInterval time.Duration
	JPEGQuality       int

	// Motion detection
	MotionAreaThreshold float64
	MotionBlurKernel    int
	MotionDiffThreshold float32
	MotionDebounce      time.Duration

	// Recording
	RecordingMaxDuration    time.Duration
	RecordingSampleInterval time.Duration
	FFmpegPath              string
	EncodeTimeout           time.Duration

	// Status relay
	StatusInterval time.Duration

	// Upload timeouts
	FrameTimeout  time.Duration
	StatusTimeout time.Duration
	ImageTimeout  time.Duration
	VideoTimeout  time.Duration

	// Telemetry source paths (overridable in tests)
	ThermalZonePath string
	UptimePath      string
	WirelessPath    string

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

// Server holds the configuration for the aggregator process.
type Server struct {
	// Application
	Version     string
	Environment string
	Port        int
	LogLevel    string

	// Logdy (lightweight web log viewer)
	LogdyEnabled bool
	LogdyHost    string
	LogdyPort    int

	// Live view
	FeedMaxFPS        int
	FrameStaleAfter   time.Duration
	PlaceholderWidth  int
	PlaceholderHeight int

	// Throttling of node uploads
	SaveInterval   time.Duration
	NotifyInterval time.Duration

	// Object storage (S3-compatible; local disk under DataDir when disabled)
	StorageEnabled  bool
	StorageEndpoint string
	StorageAccess   string
	StorageSecret   string
	StorageBucket   string
	StorageUseSSL   bool
	MotionFolder    string
	VideoFolder     string
	DataDir         string

	// Push notifications (Pushover-compatible API)
	PushEnabled  bool
	PushURL      string
	PushToken    string
	PushUserKey  string
	PushMaxWidth int

	// NATS event publishing (optional; empty URL disables)
	NatsEnabled        bool
	NatsURL            string
	NatsConnectTimeout time.Duration
	NatsReconnectWait  time.Duration
	NatsMaxReconnects  int
	NatsDrainTimeout   time.Duration

	// MQTT door sensor ingestion (optional)
	MQTTEnabled  bool
	MQTTBroker   string
	MQTTClientID string
	MQTTTopic    string

	// Swagger Configuration
	SwaggerHost string
	SwaggerPort int

	// Graceful Shutdown
	ShutdownTimeout time.Duration
}

// LoadNode reads the camera node configuration from the environment.
func LoadNode() *Node {
	loadDotenv()

	return &Node{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		CameraID:    getEnv("CAMERA_ID", "camera1"),
		Port:        getEnvInt("PORT", 8000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Aggregator connection
		ServerURL: getEnv("SERVER_URL", "http://localhost:5000"),

		// Capture (320x240 @ 15 FPS keeps a Pi Zero class device responsive)
		CaptureSource:     getEnv("CAPTURE_SOURCE", "0"),
		CaptureWidth:      getEnvInt("CAPTURE_WIDTH", 320),
		CaptureHeight:     getEnvInt("CAPTURE_HEIGHT", 240),
		CaptureFPS:        getEnvInt("CAPTURE_FPS", 15),
		ReconnectInterval: getEnvDuration("RECONNECT_INTERVAL", 5*time.Second),
		JPEGQuality:       getEnvInt("JPEG_QUALITY", 80),

		// Motion detection
		MotionAreaThreshold: getEnvFloat("MOTION_AREA_THRESHOLD", 2000),
		MotionBlurKernel:    getEnvInt("MOTION_BLUR_KERNEL", 11),
		MotionDiffThreshold: float32(getEnvFloat("MOTION_DIFF_THRESHOLD", 30)),
		MotionDebounce:      getEnvDuration("MOTION_DEBOUNCE", 2*time.Second),

		// Recording
		RecordingMaxDuration:    getEnvDuration("RECORDING_MAX_DURATION", 120*time.Second),
		RecordingSampleInterval: getEnvDuration("RECORDING_SAMPLE_INTERVAL", 2*time.Second),
		FFmpegPath:              getEnv("FFMPEG_PATH", "ffmpeg"),
		EncodeTimeout:           getEnvDuration("ENCODE_TIMEOUT", 120*time.Second),

		// Status relay
		StatusInterval: getEnvDuration("STATUS_INTERVAL", 5*time.Second),

		// Upload timeouts (frame POSTs stay short so a slow server never
		// stalls the capture cadence)
		FrameTimeout:  getEnvDuration("FRAME_TIMEOUT", 1*time.Second),
		StatusTimeout: getEnvDuration("STATUS_TIMEOUT", 5*time.Second),
		ImageTimeout:  getEnvDuration("IMAGE_TIMEOUT", 5*time.Second),
		VideoTimeout:  getEnvDuration("VIDEO_TIMEOUT", 60*time.Second),

		// Telemetry source paths
		ThermalZonePath: getEnv("THERMAL_ZONE_PATH", "/sys/class/thermal/thermal_zone0/temp"),
		UptimePath:      getEnv("UPTIME_PATH", "/proc/uptime"),
		WirelessPath:    getEnv("WIRELESS_PATH", "/proc/net/wireless"),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

// LoadServer reads the aggregator configuration from the environment.
func LoadServer() *Server {
	loadDotenv()

	return &Server{
		// Application
		Version:     getEnv("VERSION", "1.0.0"),
		Environment: getEnv("ENVIRONMENT", "development"),
		Port:        getEnvInt("PORT", 5000),
		LogLevel:    getEnv("LOG_LEVEL", "info"),

		// Logdy (lightweight web log viewer)
		LogdyEnabled: getEnvBool("LOGDY_ENABLED", false),
		LogdyHost:    getEnv("LOGDY_HOST", "localhost"),
		LogdyPort:    getEnvInt("LOGDY_PORT", 8080),

		// Live view
		FeedMaxFPS:        getEnvInt("FEED_MAX_FPS", 30),
		FrameStaleAfter:   getEnvDuration("FRAME_STALE_AFTER", 10*time.Second),
		PlaceholderWidth:  getEnvInt("PLACEHOLDER_WIDTH", 320),
		PlaceholderHeight: getEnvInt("PLACEHOLDER_HEIGHT", 240),

		// Throttling of node uploads
		SaveInterval:   getEnvDuration("SAVE_INTERVAL", 5*time.Second),
		NotifyInterval: getEnvDuration("NOTIFY_INTERVAL", 60*time.Second),

		// Object storage
		StorageEnabled:  getEnvBool("STORAGE_ENABLED", false),
		StorageEndpoint: getEnv("STORAGE_ENDPOINT", "localhost:9000"),
		StorageAccess:   getEnv("STORAGE_ACCESS_KEY", ""),
		StorageSecret:   getEnv("STORAGE_SECRET_KEY", ""),
		StorageBucket:   getEnv("STORAGE_BUCKET", "security-camera"),
		StorageUseSSL:   getEnvBool("STORAGE_USE_SSL", false),
		MotionFolder:    getEnv("MOTION_FOLDER", "motion_captures"),
		VideoFolder:     getEnv("VIDEO_FOLDER", "recordings"),
		DataDir:         getEnv("DATA_DIR", "./data"),

		// Push notifications
		PushEnabled:  getEnvBool("PUSH_ENABLED", false),
		PushURL:      getEnv("PUSH_URL", "https://api.pushover.net/1/messages.json"),
		PushToken:    getEnv("PUSH_TOKEN", ""),
		PushUserKey:  getEnv("PUSH_USER_KEY", ""),
		PushMaxWidth: getEnvInt("PUSH_MAX_WIDTH", 1024),

		// NATS
		NatsEnabled:        getEnvBool("NATS_ENABLED", false),
		NatsURL:            getNatsURL(),
		NatsConnectTimeout: getEnvDuration("NATS_CONNECT_TIMEOUT", 10*time.Second),
		NatsReconnectWait:  getEnvDuration("NATS_RECONNECT_WAIT", 2*time.Second),
		NatsMaxReconnects:  getEnvInt("NATS_MAX_RECONNECTS", -1), // -1 = unlimited
		NatsDrainTimeout:   getEnvDuration("NATS_DRAIN_TIMEOUT", 5*time.Second),

		// MQTT door sensor
		MQTTEnabled:  getEnvBool("MQTT_ENABLED", false),
		MQTTBroker:   getEnv("MQTT_BROKER", "tcp://localhost:1883"),
		MQTTClientID: getEnv("MQTT_CLIENT_ID", "camserver"),
		MQTTTopic:    getEnv("MQTT_TOPIC", "sensors/door/#"),

		// Swagger Configuration
		SwaggerHost: getEnv("SWAGGER_HOST", "localhost"),
		SwaggerPort: getEnvInt("SWAGGER_PORT", 5000),

		// Graceful Shutdown
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
	}
}

func loadDotenv() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg("No .env file found, using environment variables and defaults")
	} else {
		log.Info().Msg("Loaded configuration from .env file")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

// Helper functions for Docker environment detection
func isRunningInDocker() bool {
	if os.Getenv("DOCKER_CONTAINER") == "true" {
		return true
	}

	if _, err := os.Stat("/.dockerenv"); err == nil {
		return true
	}

	return false
}

// getNatsURL returns the appropriate NATS URL based on environment
func getNatsURL() string {
	if envURL := os.Getenv("NATS_URL"); envURL != "" {
		return envURL
	}

	// If running in Docker, use service name; otherwise use localhost
	if isRunningInDocker() {
		return "nats://nats:4222"
	}

	return "nats://localhost:4222"
}
