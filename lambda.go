package fanout

import (
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/sirupsen/logrus"
)

// Start serves fns on the Lambda runtime. The config is read from the
// environment and the function to serve is chosen by FANOUT_EXPORT when
// more than one is given. Misconfiguration is fatal.
//
// Example:
//
//	func main() {
//	    fanout.Start(fanout.ProcOf("orders", handleOrder))
//	}
func Start(fns ...*Function) {
	cfg, err := LoadConfig()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load config")
	}
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logrus.WithError(err).Fatal("Invalid log level")
	}
	logrus.SetLevel(level)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	p, err := NewFromConfig(cfg, fns)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to choose a function")
	}
	logrus.WithField("function", p.Function().Name()).Info("Starting function")

	lambda.Start(p)
}
