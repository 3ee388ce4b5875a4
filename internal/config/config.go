package config

import (
	"errors"
	"time"
	_ "time/tzdata" // 容器镜像中可能没有时区数据

	"github.com/caarlos0/env/v11"
)

type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	Server      struct {
		Port            string `env:"PORT" envDefault:"3000"`
		ReadTimeout     int    `env:"READ_TIMEOUT" envDefault:"10"`
		WriteTimeout    int    `env:"WRITE_TIMEOUT" envDefault:"15"`
		IdleTimeout     int    `env:"IDLE_TIMEOUT" envDefault:"60"`
		ShutdownTimeout int    `env:"SHUTDOWN_TIMEOUT" envDefault:"10"`
	} `envPrefix:"SERVER_"`
	Database struct {
		DSN                string `env:"DSN,required"`
		ConnectTimeout     int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		QueryTimeout       int    `env:"QUERY_TIMEOUT" envDefault:"10"`
		TransactionTimeout int    `env:"TRANSACTION_TIMEOUT" envDefault:"20"`
		MaxOpenConns       int    `env:"MAX_OPEN_CONNS" envDefault:"10"`
		MaxIdleConns       int    `env:"MAX_IDLE_CONNS" envDefault:"10"`
		MaxIdleTime        int    `env:"MAX_IDLE_TIME" envDefault:"60"`
	} `envPrefix:"DATABASE_"`
	InitialAdmin struct {
		Name        string `env:"NAME" envDefault:"管理员"`
		NameReading string `env:"NAME_READING" envDefault:"guanliyuan"`
		PIN         string `env:"PIN,required"`
	} `envPrefix:"INITIAL_ADMIN_"`
	JWT struct {
		Expiration int    `env:"EXPIRATION" envDefault:"24"` // 小时，一个班次足够
		Secret     string `env:"SECRET,required"`
	} `envPrefix:"JWT_"`
	Seed struct {
		ResidentsFile string `env:"RESIDENTS_FILE" envDefault:"./internal/seed/data/residents.csv"`
		StaffPIN      string `env:"STAFF_PIN" envDefault:"0000"`
		RecordDays    int    `env:"RECORD_DAYS" envDefault:"3"`
	} `envPrefix:"SEED_"`
	Email struct {
		NotifyTo string `env:"NOTIFY_TO"`
		SMTP     struct {
			Username    string `env:"USERNAME"`
			Password    string `env:"PASSWORD"`
			Host        string `env:"HOST"`
			Port        int    `env:"PORT" envDefault:"465"`
			DialTimeout int    `env:"DIAL_TIMEOUT" envDefault:"10"`
		} `envPrefix:"SMTP_"`
	} `envPrefix:"EMAIL_"`
	RabbitMQ struct {
		DSN            string `env:"DSN,required"`
		PublishTimeout int    `env:"PUBLISH_TIMEOUT" envDefault:"10"`
	} `envPrefix:"RABBITMQ_"`
	Redis struct {
		Host                string `env:"HOST" envDefault:"localhost"`
		Port                int    `env:"PORT" envDefault:"6379"`
		Password            string `env:"PASSWORD"`
		ConnectTimeout      int    `env:"CONNECT_TIMEOUT" envDefault:"10"`
		OperationExpiration int    `env:"OPERATION_EXPIRATION" envDefault:"10"`
	} `envPrefix:"REDIS_"`
	BulkSession struct {
		Expiration int    `env:"EXPIRATION" envDefault:"7200"` // 秒，关闭页面后草稿最多保留两小时
		KeyPrefix  string `env:"KEY_PREFIX" envDefault:"bulk_session_"`
	} `envPrefix:"BULK_SESSION_"`
	Facility struct {
		Name     string `env:"NAME" envDefault:"介护设施"`
		Timezone string `env:"TIMEZONE" envDefault:"Asia/Tokyo"`
	} `envPrefix:"FACILITY_"`
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		aggErr := env.AggregateError{}
		if ok := errors.As(err, &aggErr); ok {
			// 只返回第一个错误使得日志更清晰
			return nil, aggErr.Errors[0]
		}
		return nil, err
	}

	if _, err := cfg.Location(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Location 返回设施所在时区，日界线以该时区的零点为准
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Facility.Timezone)
}
