package api

import (
	"encoding/base64"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/caesium-cloud/gqlambda/internal/app"
	"github.com/caesium-cloud/gqlambda/internal/transport"
	"github.com/caesium-cloud/gqlambda/pkg/log"
	"github.com/labstack/echo/v4"
)

// Lambda serves h over HTTP by translating each request into an API
// Gateway event. A handler error answers 502 as API Gateway does.
func Lambda(h app.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		event, err := transport.NewEvent(c.Request())
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		ctx := lambdacontext.NewContext(c.Request().Context(), &lambdacontext.LambdaContext{
			AwsRequestID: event.RequestContext.RequestID,
		})

		resp, err := h(ctx, event)
		if err != nil {
			log.Error("lambda handler failure", "request_id", event.RequestContext.RequestID, "error", err)
			return echo.NewHTTPError(http.StatusBadGateway, "Internal server error")
		}

		return write(c, resp)
	}
}

func write(c echo.Context, resp events.APIGatewayProxyResponse) error {
	header := c.Response().Header()
	for k, v := range resp.Headers {
		header.Set(k, v)
	}
	for k, vs := range resp.MultiValueHeaders {
		header.Del(k)
		for _, v := range vs {
			header.Add(k, v)
		}
	}

	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadGateway, "Internal server error")
		}
		body = decoded
	}

	status := resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}

	c.Response().WriteHeader(status)
	_, err := c.Response().Write(body)
	return err
}
