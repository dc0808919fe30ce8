package gateway

import (
	"context"

	"github.com/jonwraymond/tokengate/auth"
	"github.com/jonwraymond/tokengate/config"
	"github.com/jonwraymond/tokengate/health"
	"github.com/jonwraymond/tokengate/observe"
	"github.com/jonwraymond/tokengate/resilience"
	"github.com/jonwraymond/tokengate/token"
)

// FromConfig wires a Server from loaded configuration. A zero secret is
// accepted: the server starts, reports Degraded and denies every check.
func FromConfig(ctx context.Context, cfg *config.Config, secret token.Secret, obs observe.Observer) (*Server, error) {
	logger := obs.Logger().With(observe.F("component", "gateway"))

	verifier := token.NewVerifier(secret)
	if !verifier.Available() {
		logger.Error(ctx, "signing secret not configured; every request will be denied",
			observe.F("source", cfg.SecretSource()))
	}

	authn, err := auth.NewBearerAuthenticator(auth.BearerConfig{
		HeaderName:        cfg.Header,
		PassthroughHeader: cfg.PassthroughHeader,
		PassthroughBare:   cfg.PassthroughBare,
	}, verifier)
	if err != nil {
		return nil, err
	}

	mw, err := observe.MiddlewareFromObserver(obs)
	if err != nil {
		return nil, err
	}

	hcfg := HandlerConfig{
		Authenticator: authn,
		Compartment:   cfg.ScopeCompartment,
		Realm:         cfg.Realm,
		SubjectHeader: cfg.SubjectHeader,
		Middleware:    mw,
	}
	var admission *resilience.Admission
	if cfg.MaxInFlight > 0 {
		admission = resilience.NewAdmission(resilience.AdmissionConfig{
			MaxInFlight: cfg.MaxInFlight,
			MaxWait:     cfg.AdmissionWait.Std(),
		})
		hcfg.Admission = admission
	}
	if cfg.EnforceScope {
		hcfg.Authorizer = auth.NewScopeAuthorizer()
	}
	check, err := NewHandler(hcfg)
	if err != nil {
		return nil, err
	}

	agg := health.NewAggregator()
	agg.Register("secret", health.NewSecretChecker(verifier, cfg.SecretSource()))
	if admission != nil {
		agg.Register("admission", admissionChecker(admission))
	}

	return NewServer(ServerConfig{
		Addr:            cfg.Listen,
		AdminAddr:       cfg.AdminListen,
		CheckPath:       cfg.CheckPath,
		Check:           check,
		Health:          agg,
		Metrics:         obs.MetricsHandler(),
		Logger:          logger,
		ShutdownTimeout: cfg.ShutdownTimeout.Std(),
	})
}

// admissionChecker reports Degraded while every check slot is taken.
func admissionChecker(adm *resilience.Admission) health.Checker {
	return health.NewCheckerFunc("admission", func(context.Context) health.Result {
		st := adm.Stats()
		details := map[string]any{
			"in_flight":     st.InFlight,
			"max_in_flight": st.MaxInFlight,
			"peak":          st.Peak,
			"refused":       st.Refused,
		}
		if st.InFlight >= st.MaxInFlight {
			return health.Degraded("all check slots in use", resilience.ErrSaturated).WithDetails(details)
		}
		return health.Healthy("accepting checks").WithDetails(details)
	})
}
