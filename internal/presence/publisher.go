package presence

import (
	"context"
	"time"

	"github.com/hugolgst/rich-go/client"
	"github.com/rs/zerolog/log"
)

const (
	// connectRetryDelay is the fixed wait between Rich Presence connection
	// attempts. Connecting retries forever: without the connection the
	// process has no purpose.
	connectRetryDelay = 15 * time.Second

	// maxButtons is the number of buttons Discord accepts per activity.
	maxButtons = 2

	promoButtonLabel = "Get Plexistence"
	promoButtonURL   = "https://github.com/plexistence/plexistence"

	smallImageKey  = "plex"
	smallImageText = "Plex"
)

// rpcClient is the slice of the Rich Presence IPC surface the publisher
// needs. The production implementation wraps rich-go's package-level API.
type rpcClient interface {
	Login(appID string) error
	SetActivity(activity client.Activity) error
	Logout()
}

type richGoClient struct{}

func (richGoClient) Login(appID string) error { return client.Login(appID) }

func (richGoClient) SetActivity(activity client.Activity) error {
	return client.SetActivity(activity)
}

func (richGoClient) Logout() { client.Logout() }

// Publisher owns the lifecycle of the Rich Presence connection: connect,
// publish, clear, and reconnect after failures.
type Publisher struct {
	appID      string
	rpc        rpcClient
	retryDelay time.Duration
	connected  bool
}

// NewPublisher returns a Publisher for the given Discord application id.
func NewPublisher(appID string) *Publisher {
	return &Publisher{
		appID:      appID,
		rpc:        richGoClient{},
		retryDelay: connectRetryDelay,
	}
}

// Connect blocks until a Rich Presence connection is established, retrying
// with a fixed delay. It returns an error only when ctx is done. Any
// previously held connection is dropped first.
func (p *Publisher) Connect(ctx context.Context) error {
	if p.connected {
		p.rpc.Logout()
		p.connected = false
	}

	for {
		err := p.rpc.Login(p.appID)
		if err == nil {
			p.connected = true
			log.Info().Msg("Connected to Discord")
			return nil
		}

		log.Error().Err(err).Dur("retry_in", p.retryDelay).Msg("Failed to connect to Discord")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.retryDelay):
		}
	}
}

// Publish sends the status as the current activity and reports success. The
// fixed promotional button is appended unless the button list is already at
// Discord's cap. A false return means the connection is no longer usable and
// the caller should reconnect.
func (p *Publisher) Publish(status Status) bool {
	buttons := status.Buttons
	if len(buttons) < maxButtons {
		buttons = append(buttons, Button{Label: promoButtonLabel, URL: promoButtonURL})
	}

	// The end timestamp is absolute: recomputed from the remaining seconds
	// at publish time so the countdown tracks playback.
	end := time.Now().Add(time.Duration(status.RemainingSeconds) * time.Second)

	activity := client.Activity{
		Details:    status.Primary,
		State:      status.Secondary,
		LargeImage: status.Image,
		LargeText:  status.ImageText,
		SmallImage: smallImageKey,
		SmallText:  smallImageText,
		Timestamps: &client.Timestamps{End: &end},
	}
	for _, b := range buttons {
		activity.Buttons = append(activity.Buttons, &client.Button{Label: b.Label, Url: b.URL})
	}

	if err := p.rpc.SetActivity(activity); err != nil {
		log.Error().Err(err).Str("title", status.Primary).Msg("Failed to set Rich Presence")
		return false
	}

	log.Info().Str("title", status.Primary).Msg("Set Rich Presence")
	return true
}

// Clear removes the published status. Best-effort: with no session active
// there is nothing useful to do about a failed clear.
func (p *Publisher) Clear() {
	if !p.connected {
		return
	}
	if err := p.rpc.SetActivity(client.Activity{}); err != nil {
		log.Debug().Err(err).Msg("Failed to clear Rich Presence")
	}
}
