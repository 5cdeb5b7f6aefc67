package channel

import (
	"context"

	"github.com/Taichi-iskw/idcable/internal/app"
	"github.com/Taichi-iskw/idcable/internal/service/guide"
)

// ServiceFactory creates guide service instances
type ServiceFactory struct{}

// NewServiceFactory creates a new service factory
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// CreateService creates a guide service with all dependencies
func (f *ServiceFactory) CreateService(ctx context.Context) (guide.Service, func(), error) {
	a, cleanup, err := app.Build(ctx, app.Options{})
	if err != nil {
		return nil, nil, err
	}
	return a.Guide, cleanup, nil
}

// resolveService returns service when set (tests), otherwise a real one from the factory
func resolveService(ctx context.Context, service guide.Service) (guide.Service, func(), error) {
	if service != nil {
		return service, func() {}, nil
	}
	return NewServiceFactory().CreateService(ctx)
}
