package config

import (
	"os"
	"strconv"
	"strings"
)

// Server captures process configuration so main stays lean.
type Server struct {
	Addr string

	// DatabaseURL enables the PostgreSQL stores when set; otherwise the
	// in-memory stores serve everything.
	DatabaseURL string

	// RedisURL switches answer storage to Redis when set.
	RedisURL string

	// KafkaBrokers enables the Kafka change sink when non-empty.
	KafkaBrokers []string
	KafkaTopic   string

	// Policy selects the eligibility decision policy: threshold or all_rules.
	Policy    string
	Threshold float64

	// QueueLimit bounds pending submissions per subject.
	QueueLimit int
}

// FromEnv builds the configuration from environment variables.
func FromEnv() Server {
	addr := os.Getenv("ELIGIBILITY_ADDR")
	if addr == "" {
		addr = ":8080"
	}

	var brokers []string
	if raw := os.Getenv("KAFKA_BROKERS"); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				brokers = append(brokers, broker)
			}
		}
	}
	topic := os.Getenv("KAFKA_TOPIC")
	if topic == "" {
		topic = "eligibility.score-changes"
	}

	policy := os.Getenv("ELIGIBILITY_POLICY")
	if policy == "" {
		policy = "threshold"
	}
	threshold := 0.6
	if raw := os.Getenv("ELIGIBILITY_THRESHOLD"); raw != "" {
		if parsed, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = parsed
		}
	}
	queueLimit := 64
	if raw := os.Getenv("SUBMIT_QUEUE_LIMIT"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			queueLimit = parsed
		}
	}

	return Server{
		Addr:         addr,
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		KafkaBrokers: brokers,
		KafkaTopic:   topic,
		Policy:       policy,
		Threshold:    threshold,
		QueueLimit:   queueLimit,
	}
}
