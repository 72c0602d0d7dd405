// Package hello is the sample application: one service, one controller
// mapped to /hello.
package hello

import (
	"log/slog"

	"github.com/hatimiti/easyframework/framework/container"
	"github.com/hatimiti/easyframework/framework/interceptor"
	"github.com/hatimiti/easyframework/routing"
)

// Greeter produces the greeting served at /hello.
type Greeter interface {
	Hello() string
}

// SampleService is the Greeter singleton. Hello runs in its own
// transaction, nested inside the controller's.
type SampleService struct {
	Interceptor *interceptor.Interceptor `inject:""`
	Logger      *slog.Logger             `inject:"optional"`
}

func NewSampleService() *SampleService { return &SampleService{} }

func (s *SampleService) TransactionalMethods() []string { return []string{"Hello"} }

func (s *SampleService) Hello() string {
	greeting, _ := interceptor.Wrap(s.Interceptor, s, "Hello", s.greet)()
	return greeting
}

func (s *SampleService) greet() (string, error) {
	if s.Logger != nil {
		s.Logger.Debug("Saying hello")
	}
	return "Hello", nil
}

// SampleController serves /hello. Every mapped method runs inside a
// transaction.
type SampleController struct {
	interceptor.Transactional

	Service Greeter `inject:""`
}

func NewSampleController() *SampleController { return &SampleController{} }

func (c *SampleController) RequestMappings() []routing.Mapping {
	return []routing.Mapping{{Path: "/hello", Method: "Home"}}
}

func (c *SampleController) Home() string {
	return c.Service.Hello()
}

// Namespace registers the sample application.
var Namespace = &container.Namespace{
	Name: "hello",
	Components: []container.Registration{
		container.Component(NewSampleService, container.As[Greeter]()),
		container.Controller(NewSampleController),
	},
}
