package intake

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Service turns reviewed extractions into documents and keeps
// inventory in step when documents are edited or removed
type Service struct {
	store  Store
	logger *logrus.Logger
	now    func() time.Time
}

// NewService creates a new intake service
func NewService(store Store, logger *logrus.Logger) *Service {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}
