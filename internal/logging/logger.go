package logging

import (
	"io"
	"os"
	"strings"

	"github.com/2beens/gymlog/pkg"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const maxLogFileSizeMB = 20

type LoggerSetupParams struct {
	// Component tags every entry, so the service, the backups tool and the
	// MCP server can share one log file.
	Component     string
	LogFileName   string
	LogToStdout   bool
	LogLevel      string
	LogFormatJSON bool
	// Output replaces stdout as the console stream; the MCP server needs stderr.
	Output io.Writer

	Environment      string
	SentryEnabled    bool
	SentryDSN        string
	SentryServerName string
}

// Setup configures the global logrus logger. The returned func closes the
// rotating log file, if any.
func Setup(params LoggerSetupParams) func() {
	if params.LogFormatJSON {
		logrus.SetFormatter(&logrus.JSONFormatter{})
	}
	logrus.SetLevel(GetLevel(params.LogLevel))

	if params.Component != "" {
		logrus.AddHook(&componentHook{component: params.Component})
	}
	if params.SentryEnabled {
		setupSentry(params)
	}

	console := params.Output
	if console == nil {
		console = os.Stdout
	}

	if params.LogFileName == "" {
		logrus.SetOutput(console)
		logrus.Debugln("writing logs to console only")
		return func() {}
	}

	if !strings.HasSuffix(params.LogFileName, ".log") {
		params.LogFileName += ".log"
	}
	rotating := &lumberjack.Logger{
		Filename: params.LogFileName,
		MaxSize:  maxLogFileSizeMB,
		Compress: true,
	}

	if params.LogToStdout {
		logrus.SetOutput(pkg.NewCombinedWriter(console, rotating))
		logrus.Debugf("writing logs to console and [%s]", params.LogFileName)
	} else {
		logrus.SetOutput(rotating)
	}

	return func() {
		logrus.SetOutput(console)
		if err := rotating.Close(); err != nil {
			logrus.Errorf("close log file: %s", err)
		}
	}
}

func setupSentry(params LoggerSetupParams) {
	err := sentry.Init(sentry.ClientOptions{
		Environment:      params.Environment,
		Dsn:              params.SentryDSN,
		TracesSampleRate: 1.0,
		ServerName:       params.SentryServerName,
	})
	if err != nil {
		logrus.Errorf("sentry init: %s", err)
		return
	}
	logrus.AddHook(NewSentryHook([]logrus.Level{
		logrus.PanicLevel,
		logrus.FatalLevel,
		logrus.ErrorLevel,
	}))
	logrus.Infoln("sentry set up")
}

type componentHook struct {
	component string
}

func (h *componentHook) Levels() []logrus.Level {
	return logrus.AllLevels
}

func (h *componentHook) Fire(entry *logrus.Entry) error {
	if _, ok := entry.Data["component"]; !ok {
		entry.Data["component"] = h.component
	}
	return nil
}

func GetLevel(level string) logrus.Level {
	switch strings.ToLower(level) {
	case "debug":
		return logrus.DebugLevel
	case "error":
		return logrus.ErrorLevel
	case "fatal":
		return logrus.FatalLevel
	case "info":
		return logrus.InfoLevel
	case "trace":
		return logrus.TraceLevel
	case "warn":
		return logrus.WarnLevel
	default:
		return logrus.TraceLevel
	}
}
