package main

// Build the Lambda handler binary:
//   GOOS=linux GOARCH=arm64 CGO_ENABLED=0 go build -o bootstrap ./cmd/lambda-http

import (
	"context"
	"net/http"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	ginadapter "github.com/awslabs/aws-lambda-go-api-proxy/gin"
	"github.com/gin-gonic/gin"

	"jobhunt-backend/internal/bootstrap"
	"jobhunt-backend/internal/shared/config"
	"jobhunt-backend/internal/shared/telemetry"
)

const bootstrapFailedBody = `{"error":{"code":"internal_error","message":"service unavailable"}}`

type proxy func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error)

// lazyProxy builds the router on the first invocation so cold-start errors
// surface as a JSON 500 instead of a crashed runtime.
func lazyProxy(build func(ctx context.Context) (*gin.Engine, error)) proxy {
	var (
		once    sync.Once
		adapter *ginadapter.GinLambdaV2
		initErr error
	)
	return func(ctx context.Context, req events.APIGatewayV2HTTPRequest) (events.APIGatewayV2HTTPResponse, error) {
		once.Do(func() {
			engine, err := build(ctx)
			if err != nil {
				initErr = err
				return
			}
			adapter = ginadapter.NewV2(engine)
		})
		if initErr != nil {
			telemetry.Error("lambda.bootstrap_failed", map[string]any{"error": initErr})
			return events.APIGatewayV2HTTPResponse{
				StatusCode: http.StatusInternalServerError,
				Body:       bootstrapFailedBody,
				Headers:    map[string]string{"Content-Type": "application/json"},
			}, nil
		}
		return adapter.ProxyWithContext(ctx, req)
	}
}

func buildRouter(ctx context.Context) (*gin.Engine, error) {
	app, err := bootstrap.Build(ctx, config.Load(), bootstrap.Options{})
	if err != nil {
		return nil, err
	}
	return app.Router, nil
}

func main() {
	lambda.Start(lazyProxy(buildRouter))
}
