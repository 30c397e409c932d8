package deps

import (
	"time"

	"github.com/MrSnakeDoc/stamp/internal/logger"
	"github.com/MrSnakeDoc/stamp/internal/player"
	"github.com/MrSnakeDoc/stamp/internal/session"
	"github.com/MrSnakeDoc/stamp/internal/store"
)

// QueueStats exposes the persist queue backlog to the probes.
type QueueStats interface {
	Pending() int
}

type Deps struct {
	Logger        logger.Logger
	StartTime     time.Time
	Version       string
	Commit        string
	BuildDate     string
	GoVersion     string
	TimeNow       func() time.Time // for testing, defaults to time.Now
	AllowedHosts  []string         // Host headers allowed to access the server
	AllowedCIDRS  []string         // IPs allowed to access the API and probes
	TrustProxy    bool             // true if running behind a trusted reverse proxy (e.g., cloudflared)
	RateBurst     int              // per-IP burst on mutating routes
	RatePerMin    int              // per-IP refill on mutating routes
	StoreBackend  string           // redis | sqlite | memory, reported by /infra
	Sessions      *session.Manager // Active session and settings
	Player        *player.Remote   // Time source fed by page reports
	Gateway       store.Gateway    // Persistence backend
	Queue         QueueStats       // Persist queue, nil if not wired
	ReloadTrigger chan struct{}    // Channel to trigger manual settings reload
}
