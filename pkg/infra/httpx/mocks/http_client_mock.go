package mocks

import (
	"fmt"
	"net/http"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/valyala/fasthttp"
)

type MockHTTPClient struct {
	mock.Mock
}

func (m *MockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	args := m.Called(req)
	resp, ok := args.Get(0).(*http.Response)
	if !ok && args.Get(0) != nil {
		return nil, fmt.Errorf("expected *http.Response, got %T", args.Get(0))
	}
	return resp, args.Error(1)
}

// MockFastClient fills resp from the second and third return values (body, status).
type MockFastClient struct {
	mock.Mock
}

func (m *MockFastClient) DoTimeout(req *fasthttp.Request, resp *fasthttp.Response, timeout time.Duration) error {
	args := m.Called(req, resp, timeout)

	if len(args) > 1 && args.Get(1) != nil {
		if body, ok := args.Get(1).([]byte); ok {
			resp.SetBody(body)
		}
	}
	if len(args) > 2 && args.Get(2) != nil {
		if statusCode, ok := args.Get(2).(int); ok {
			resp.SetStatusCode(statusCode)
		}
	}

	return args.Error(0)
}
