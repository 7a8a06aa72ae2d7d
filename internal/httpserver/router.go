package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"cryptolab/internal/auth"
	"cryptolab/internal/config"
	"cryptolab/internal/httpserver/handlers"
	"cryptolab/internal/spn"
)

// Store is everything the API persists. *store.Store implements it.
type Store interface {
	auth.SessionStore
	handlers.AuthStore
	handlers.HistoryStore
	handlers.RunRecorder
	handlers.SPNStore
}

type Deps struct {
	// Store may be nil; the API then runs without accounts or history and
	// every learner-scoped route acts for the anonymous learner.
	Store  Store
	Signer *auth.Signer
	Limits config.Limits
	SPN    *spn.Registry
	Log    *zap.SugaredLogger
}

func NewRouter(d Deps) http.Handler {
	lg := d.Log
	reg := d.SPN
	if reg == nil {
		reg = spn.NewRegistry()
	}
	var (
		rec handlers.RunRecorder = handlers.Discard{}
		sst handlers.SPNStore    = handlers.Discard{}
	)
	if d.Store != nil {
		rec, sst = d.Store, d.Store
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID, middleware.RealIP, middleware.Recoverer, middleware.Logger)
	if d.Store != nil {
		// public routes still attribute history to a logged-in learner
		r.Use(auth.Optional(d.Signer, d.Store))
	}

	r.Route("/v1/numtheory", func(nt chi.Router) {
		nt.Post("/gcd", handlers.Gcd(rec, lg))
		nt.Post("/egcd", handlers.ExtendedGcd(rec, lg))
		nt.Post("/modinv", handlers.ModInverse(rec, lg))
		nt.Post("/modpow", handlers.ModPow(rec, lg))
		nt.Post("/modarith", handlers.ModArith(rec, lg))
		nt.Post("/phi", handlers.EulerPhi(d.Limits.MaxTrialN, rec, lg))
		nt.Post("/isprime", handlers.IsPrime(d.Limits.MaxTrialN, rec, lg))
	})
	r.Route("/v1/binary", func(b chi.Router) {
		b.Post("/xor", handlers.XOR(rec, lg))
		b.Post("/increment", handlers.Increment(rec, lg))
		b.Post("/hex-to-binary", handlers.HexToBinary(rec, lg))
		b.Post("/binary-to-hex", handlers.BinaryToHex(rec, lg))
		b.Post("/random", handlers.RandomBits(rec, lg))
	})
	r.Route("/v1/classical", func(c chi.Router) {
		c.Post("/caesar", handlers.Caesar(rec, lg))
		c.Post("/caesar/bruteforce", handlers.CaesarBruteForce(rec, lg))
		c.Post("/frequency", handlers.Frequency(rec, lg))
		c.Post("/substitution", handlers.Substitution(rec, lg))
		c.Post("/otp/key", handlers.OTPKey(rec, lg))
		c.Post("/otp/apply", handlers.OTPApply(rec, lg))
		c.Post("/possibilistic", handlers.Possibilistic(rec, lg))
	})
	r.Route("/v1/rsa", func(rs chi.Router) {
		rs.Post("/keys", handlers.RSAKeys(d.Limits.RSAMaxPrime, rec, lg))
		rs.Post("/encrypt", handlers.RSAEncrypt(rec, lg))
		rs.Post("/decrypt", handlers.RSADecrypt(rec, lg))
	})
	r.Post("/v1/modes/{mode}/{direction}", handlers.RunMode(d.Limits.MaxBlocks, rec, lg))
	r.Get("/v1/catalogue", handlers.Catalogue())

	if d.Store != nil {
		r.Post("/v1/auth/login", handlers.Login(d.Store, d.Signer, lg))
	}
	r.Group(func(learner chi.Router) {
		if d.Store != nil {
			learner.Use(auth.JWTAuth(d.Signer, d.Store))
			learner.Get("/v1/me", handlers.Me(d.Store, lg))
			learner.Post("/v1/auth/logout", handlers.Logout(d.Store, reg, lg))
			learner.Get("/v1/history", handlers.History(d.Store, lg))
			learner.With(auth.RequireRole("Instructor")).Get("/v1/instructor/runs", handlers.RecentRuns(d.Store, lg))
		} else {
			learner.Use(auth.Anonymous)
		}
		learner.Post("/v1/spn/setup", handlers.SPNSetup(reg, sst, rec, lg))
		learner.Get("/v1/spn/config", handlers.SPNConfig(reg, sst, lg))
		learner.Post("/v1/spn/encrypt", handlers.SPNEncrypt(reg, sst, rec, lg))
		learner.Post("/v1/spn/decrypt", handlers.SPNDecrypt(reg, sst, rec, lg))
	})
	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	return r
}
