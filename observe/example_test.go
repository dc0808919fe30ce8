package observe_test

import (
	"context"
	"fmt"

	"github.com/jonwraymond/tokengate/observe"
)

func ExampleMiddleware_Wrap() {
	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "tokengate"})
	if err != nil {
		fmt.Println(err)
		return
	}
	defer func() { _ = obs.Shutdown(context.Background()) }()

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		fmt.Println(err)
		return
	}

	check := mw.Wrap(func(ctx context.Context, meta observe.CheckMeta) observe.Outcome {
		return observe.Outcome{Allowed: true, Reason: "none", Subject: "medschool-cli"}
	})
	out := check(context.Background(), observe.CheckMeta{Component: "gateway", Scheme: "bearer"})
	fmt.Println(out.Allowed, out.Subject)
	// Output: true medschool-cli
}
