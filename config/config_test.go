package config

import "testing"

func TestLoadDefaults(t *testing.T) {
	for _, v := range []string{"SERVER_PORT", "SIM_TICK_HZ", "BROADCAST_HZ", "MATCH_SEED", "ENVIRONMENT", "CORS_ALLOWED_ORIGINS"} {
		t.Setenv(v, "")
	}
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Sim.TickHz != 60 || cfg.Sim.BroadcastHz != 20 {
		t.Fatalf("defaults = %+v", cfg)
	}
	if cfg.Logging.JSONFormat {
		t.Fatalf("development should log text")
	}
	if len(cfg.Server.AllowedOrigins) != 1 || cfg.Server.AllowedOrigins[0] != "*" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SIM_TICK_HZ", "30")
	t.Setenv("BROADCAST_HZ", "10")
	t.Setenv("MATCH_SEED", "99")
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Sim.TickHz != 30 || cfg.Sim.BroadcastHz != 10 || cfg.Sim.Seed != 99 {
		t.Fatalf("sim = %+v", cfg.Sim)
	}
	if !cfg.Logging.JSONFormat {
		t.Fatalf("production should log JSON")
	}
	if len(cfg.Server.AllowedOrigins) != 2 || cfg.Server.AllowedOrigins[1] != "http://b.test" {
		t.Fatalf("origins = %v", cfg.Server.AllowedOrigins)
	}
}

func TestLoadRejectsBadRates(t *testing.T) {
	cases := map[string][2]string{
		"zero tick":        {"0", "20"},
		"not dividing":     {"60", "25"},
		"broadcast > tick": {"10", "20"},
		"not a number":     {"fast", "20"},
	}
	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("SIM_TICK_HZ", c[0])
			t.Setenv("BROADCAST_HZ", c[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for tick=%s broadcast=%s", c[0], c[1])
			}
		})
	}
}
