package app

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
)

const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
)

// Config описывает настройки запуска сервера. Тег env называет переменную
// окружения, из которой поле читается; её же видно в ошибках Validate.
type Config struct {
	HTTPAddr    string `env:"SCM_HTTP_ADDR" validate:"required"`
	GRPCAddr    string `env:"SCM_GRPC_ADDR" validate:"required"`
	MetricsAddr string `env:"SCM_METRICS_ADDR" validate:"required"`

	StorageDriver       string `env:"SCM_STORAGE_DRIVER" validate:"omitempty,oneof=memory postgres"`
	PostgresDSN         string `env:"SCM_POSTGRES_DSN" validate:"required_if=StorageDriver postgres"`
	PostgresAutoMigrate bool   `env:"SCM_POSTGRES_AUTO_MIGRATE"`

	// KafkaBrokers: брокеры через запятую; пусто, Kafka выключена.
	KafkaBrokers       string `env:"SCM_KAFKA_BROKERS"`
	KafkaConsumerGroup string `env:"SCM_KAFKA_CONSUMER_GROUP" validate:"required_with=KafkaBrokers"`

	OutboxPollInterval  time.Duration `env:"SCM_OUTBOX_POLL_INTERVAL" validate:"gt=0"`
	OutboxBatchSize     int           `env:"SCM_OUTBOX_BATCH_SIZE" validate:"gt=0"`
	OutboxMaxAttempts   int           `env:"SCM_OUTBOX_MAX_ATTEMPTS" validate:"gt=0"`
	OutboxRetryDelay    time.Duration `env:"SCM_OUTBOX_RETRY_DELAY" validate:"min=0"`
	OutboxMaxPendingAge time.Duration `env:"SCM_OUTBOX_MAX_PENDING_AGE" validate:"gt=0"`

	SeedDemo bool `env:"SCM_SEED_DEMO"`
}

// DefaultConfig возвращает конфигурацию для локального запуска.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8080",
		GRPCAddr:            ":50051",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		KafkaConsumerGroup:  "scm-tracking-ingest",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    100 * time.Millisecond,
		OutboxMaxPendingAge: 5 * time.Minute,
	}
}

var configValidator = func() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if name, _, _ := strings.Cut(f.Tag.Get("env"), ","); name != "" {
			return name
		}
		return f.Name
	})
	return v
}()

// Validate проверяет согласованность настроек до старта серверов.
func (c Config) Validate() error {
	err := configValidator.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("invalid config: %w", err)
	}

	problems := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		problems = append(problems, fe.Field()+" "+configRule(fe))
	}
	return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
}

func configRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "required_if":
		return "is required for postgres storage"
	case "required_with":
		return "is required when Kafka is enabled"
	case "oneof":
		return "must be one of: " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "gt":
		return "must be > 0"
	case "min":
		return "must be >= 0"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// LookupFunc совместима с os.LookupEnv.
type LookupFunc func(key string) (string, bool)

var configParsers = map[reflect.Type]env.ParserFunc{
	reflect.TypeOf(false): func(v string) (any, error) { return ParseBool(v) },
}

// LoadConfig накладывает окружение в формате os.Environ на DefaultConfig.
// Значение, которое не разбирается или нарушает правила Validate,
// пропускается: поле остаётся по умолчанию, а причина попадает в warnings.
// Пустые строки игнорируются молча.
func LoadConfig(environ []string) (Config, []string) {
	values := make(map[string]string)
	for _, kv := range environ {
		key, raw, _ := strings.Cut(kv, "=")
		if raw = strings.TrimSpace(raw); raw != "" {
			values[key] = raw
		}
	}

	var warnings []string
	reject := func(key, reason string) {
		warnings = append(warnings, fmt.Sprintf("%s=%q ignored: %s", key, values[key], reason))
		delete(values, key)
	}

	// Каждый проход убирает хотя бы одну переменную, так что цикл конечен.
	for {
		cfg := DefaultConfig()
		err := env.ParseWithOptions(&cfg, env.Options{Environment: values, FuncMap: configParsers})
		if err != nil {
			if !rejectUnparsed(err, reject) {
				return DefaultConfig(), append(warnings, err.Error())
			}
			continue
		}
		cfg.StorageDriver = strings.ToLower(cfg.StorageDriver)

		rejected := false
		for _, fe := range violations(cfg) {
			if _, fromEnv := values[fe.Field()]; fromEnv {
				reject(fe.Field(), configRule(fe))
				rejected = true
			}
		}
		if !rejected {
			return cfg, warnings
		}
	}
}

// rejectUnparsed отбрасывает переменные с ошибкой разбора. false, если
// среди ошибок нет ни одной привязанной к полю.
func rejectUnparsed(err error, reject func(key, reason string)) bool {
	errs := []error{err}
	var agg env.AggregateError
	if errors.As(err, &agg) {
		errs = agg.Errors
	}

	found := false
	for _, e := range errs {
		var perr env.ParseError
		if !errors.As(e, &perr) {
			continue
		}
		field, ok := reflect.TypeOf(Config{}).FieldByName(perr.Name)
		if !ok {
			continue
		}
		key, _, _ := strings.Cut(field.Tag.Get("env"), ",")
		reject(key, perr.Err.Error())
		found = true
	}
	return found
}

func violations(cfg Config) validator.ValidationErrors {
	var fieldErrs validator.ValidationErrors
	errors.As(configValidator.Struct(cfg), &fieldErrs)
	return fieldErrs
}

// ParseBool понимает 1/0, true/false, yes/no, y/n и on/off без учёта регистра.
func ParseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, errors.New("invalid boolean value")
	}
}
