package presence

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hugolgst/rich-go/client"
)

// fakeRPC scripts the Rich Presence IPC surface for tests.
type fakeRPC struct {
	loginErrs  []error // consumed per Login call; nil entries succeed
	alwaysErr  error   // returned by every Login call once loginErrs runs out
	setErr     error
	logins     int
	logouts    int
	activities []client.Activity
}

func (f *fakeRPC) Login(appID string) error {
	f.logins++
	if len(f.loginErrs) > 0 {
		err := f.loginErrs[0]
		f.loginErrs = f.loginErrs[1:]
		return err
	}
	return f.alwaysErr
}

func (f *fakeRPC) SetActivity(activity client.Activity) error {
	f.activities = append(f.activities, activity)
	return f.setErr
}

func (f *fakeRPC) Logout() {
	f.logouts++
}

func newTestPublisher(rpc rpcClient) *Publisher {
	return &Publisher{
		appID:      "app-id",
		rpc:        rpc,
		retryDelay: time.Millisecond,
	}
}

func TestConnectRetriesUntilSuccess(t *testing.T) {
	rpc := &fakeRPC{loginErrs: []error{errors.New("socket missing"), errors.New("socket missing")}}
	p := newTestPublisher(rpc)

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if rpc.logins != 3 {
		t.Errorf("logins = %d, want 3 (two failures then success)", rpc.logins)
	}
}

func TestConnectStopsWhenContextDone(t *testing.T) {
	rpc := &fakeRPC{alwaysErr: errors.New("socket missing")}
	p := newTestPublisher(rpc)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()

	if err := p.Connect(ctx); err == nil {
		t.Fatal("Connect() expected context error")
	}
}

func TestReconnectDropsPreviousConnection(t *testing.T) {
	rpc := &fakeRPC{}
	p := newTestPublisher(rpc)

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if rpc.logouts != 1 {
		t.Errorf("logouts = %d, want 1 before the second login", rpc.logouts)
	}
}

func TestPublishAppendsPromotionalButton(t *testing.T) {
	rpc := &fakeRPC{}
	p := newTestPublisher(rpc)

	ok := p.Publish(Status{
		Primary:          "Arrival (2016)",
		RemainingSeconds: 5760,
		Buttons:          []Button{{Label: "TMDB", URL: "https://themoviedb.org/movie/329865"}},
	})
	if !ok {
		t.Fatal("Publish() = false, want true")
	}
	if len(rpc.activities) != 1 {
		t.Fatalf("activities = %d, want 1", len(rpc.activities))
	}

	activity := rpc.activities[0]
	if len(activity.Buttons) != 2 {
		t.Fatalf("buttons = %d, want 2", len(activity.Buttons))
	}
	if activity.Buttons[1].Label != promoButtonLabel || activity.Buttons[1].Url != promoButtonURL {
		t.Errorf("last button = %+v, want the promotional button", activity.Buttons[1])
	}
}

func TestPublishSkipsPromotionalButtonAtCap(t *testing.T) {
	rpc := &fakeRPC{}
	p := newTestPublisher(rpc)

	p.Publish(Status{
		Primary: "Arrival (2016)",
		Buttons: []Button{
			{Label: "TMDB", URL: "https://themoviedb.org/movie/329865"},
			{Label: "Trakt.tv", URL: "https://trakt.tv/movies/443"},
		},
	})

	activity := rpc.activities[0]
	if len(activity.Buttons) != maxButtons {
		t.Fatalf("buttons = %d, want the cap of %d", len(activity.Buttons), maxButtons)
	}
	for _, b := range activity.Buttons {
		if b.Label == promoButtonLabel {
			t.Error("promotional button should be skipped when the list is at capacity")
		}
	}
}

func TestPublishActivityFields(t *testing.T) {
	rpc := &fakeRPC{}
	p := newTestPublisher(rpc)

	before := time.Now()
	p.Publish(Status{
		Primary:          "Lost",
		Secondary:        "The Constant (S4:E5)",
		Image:            "https://image.tmdb.org/t/p/original/lost.jpg",
		ImageText:        "Lost",
		RemainingSeconds: 2520,
	})

	activity := rpc.activities[0]
	if activity.Details != "Lost" || activity.State != "The Constant (S4:E5)" {
		t.Errorf("activity text = %q / %q", activity.Details, activity.State)
	}
	if activity.SmallImage != smallImageKey || activity.SmallText != smallImageText {
		t.Errorf("small image = %q / %q, want the Plex badge", activity.SmallImage, activity.SmallText)
	}
	if activity.Timestamps == nil || activity.Timestamps.End == nil {
		t.Fatal("activity end timestamp missing")
	}

	wantEnd := before.Add(2520 * time.Second)
	if got := *activity.Timestamps.End; got.Before(wantEnd) || got.After(wantEnd.Add(time.Second)) {
		t.Errorf("end timestamp = %v, want ~%v", got, wantEnd)
	}
}

func TestPublishFailureReportsFalse(t *testing.T) {
	rpc := &fakeRPC{setErr: errors.New("pipe closed")}
	p := newTestPublisher(rpc)

	if ok := p.Publish(Status{Primary: "Arrival (2016)"}); ok {
		t.Fatal("Publish() = true, want false on IPC failure")
	}
}

func TestClearIsBestEffort(t *testing.T) {
	rpc := &fakeRPC{setErr: errors.New("pipe closed")}
	p := newTestPublisher(rpc)

	if err := p.Connect(context.Background()); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	// Must not panic or surface the failure.
	p.Clear()

	if len(rpc.activities) != 1 {
		t.Fatalf("activities = %d, want the clear attempt", len(rpc.activities))
	}
	if rpc.activities[0].Details != "" {
		t.Errorf("clear should publish an empty activity, got %+v", rpc.activities[0])
	}
}

func TestClearWithoutConnectionIsNoOp(t *testing.T) {
	rpc := &fakeRPC{}
	p := newTestPublisher(rpc)

	p.Clear()
	if len(rpc.activities) != 0 {
		t.Errorf("activities = %d, want none before connecting", len(rpc.activities))
	}
}
