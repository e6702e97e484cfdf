package twilio

import (
	"errors"

	"github.com/Daskott/instantdoc/server/logger"
	"github.com/Daskott/instantdoc/shared"
	pkgErrors "github.com/pkg/errors"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"
)

var (
	ErrUpstream = errors.New("twilio request failed")

	logg = logger.NewLogger("twilio")
)

type ClientWrapper struct {
	client  *twilio.RestClient
	config  shared.TwilioConfig
	devMode bool
}

// NewClient returns a Twilio client. In 'devMode' messages are logged instead of sent.
func NewClient(config shared.TwilioConfig, devMode bool) *ClientWrapper {
	client := twilio.NewRestClientWithParams(twilio.RestClientParams{
		Username: config.AccountSid,
		Password: config.AuthToken,
	})

	return &ClientWrapper{
		client:  client,
		config:  config,
		devMode: devMode,
	}
}

func (cw *ClientWrapper) SendMessage(to, msg string) error {
	if cw.devMode {
		logg.Infof("[dev] SMS to %v: %v", to, msg)
		return nil
	}

	params := &openapi.CreateMessageParams{}
	params.SetMessagingServiceSid(cw.config.MessagingServiceSid)
	params.SetTo(to)
	params.SetBody(msg)

	resp, err := cw.client.ApiV2010.CreateMessage(params)
	if err != nil {
		return pkgErrors.Wrapf(ErrUpstream, "CreateMessage: %v", err)
	}

	if resp.ErrorMessage != nil && *resp.ErrorMessage != "" {
		return pkgErrors.Wrapf(ErrUpstream, "CreateMessage: %v", *resp.ErrorMessage)
	}

	return nil
}
