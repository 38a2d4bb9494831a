// lambda.go — адаптер AWS Lambda (API Gateway REST proxy) к http.Handler.
// Позволяет развернуть тот же маршрутизатор как serverless-функцию.
package server

import (
	"context"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/awslabs/aws-lambda-go-api-proxy/httpadapter"
)

// LambdaAdapter преобразует события API Gateway в HTTP-запросы к handler
// через httpadapter: заголовки и query с несколькими значениями, base64-тела.
type LambdaAdapter struct {
	proxy *httpadapter.HandlerAdapter
}

// NewLambdaAdapter создаёт адаптер для handler.
func NewLambdaAdapter(handler http.Handler) *LambdaAdapter {
	return &LambdaAdapter{proxy: httpadapter.New(handler)}
}

// Handle обрабатывает одно событие API Gateway. Сигнатура подходит для lambda.Start.
// Контекст вызова доступен обработчикам через r.Context().
func (a *LambdaAdapter) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	return a.proxy.ProxyWithContext(ctx, event)
}
