package services

import (
	"log"
	"math/rand"
	"sync"
	"time"

	"admission-portal/models"

	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Weighted spin prizes; weights sum to 100, max prize 30%.
var (
	spinPrizes  = []int{0, 5, 10, 12, 15, 18, 20, 25, 30}
	spinWeights = []int{10, 18, 18, 14, 14, 10, 8, 6, 2}
)

// pendingSpinTTL bounds how long a previewed prize waits for its commit.
// A stale slot simply means the client re-previews and re-draws.
const pendingSpinTTL = 10 * time.Minute

type pendingSpin struct {
	pct       int
	createdAt time.Time
}

// SpinService draws the wheel prize in two phases: Preview draws and holds the
// prize in an ephemeral per-application slot so the client animation can run,
// Commit durably writes it. The only authoritative "already spun" signals are
// spin_discount_pct > 0 and the payment lock; the slot is never authoritative.
type SpinService struct {
	DB        *gorm.DB
	Discounts *DiscountService
	Badges    *BadgeService
	Activity  *ActivityService

	mu      sync.Mutex
	pending map[string]pendingSpin
	rng     *rand.Rand
}

func NewSpinService(db *gorm.DB, discounts *DiscountService, badges *BadgeService, activity *ActivityService) *SpinService {
	return &SpinService{
		DB:        db,
		Discounts: discounts,
		Badges:    badges,
		Activity:  activity,
		pending:   make(map[string]pendingSpin),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SpinResult is returned by both phases.
type SpinResult struct {
	OK       bool `json:"ok"`
	Discount int  `json:"discount"`
	Locked   bool `json:"locked"`
}

// Preview draws a prize and holds it without persisting. If the application is
// locked or already spun it returns the existing value with no new randomness.
func (s *SpinService) Preview(app *models.Application) SpinResult {
	if app.DiscountsLocked() || app.SpinDiscountPct > 0 {
		return SpinResult{OK: false, Discount: app.SpinDiscountPct, Locked: true}
	}

	win := s.draw()
	s.mu.Lock()
	s.pending[app.ID] = pendingSpin{pct: win, createdAt: time.Now()}
	s.mu.Unlock()

	return SpinResult{OK: true, Discount: win, Locked: false}
}

// Commit persists the previewed prize, marks today's activity and evaluates the
// spin badge, all in one transaction. Calling it again, or after payment, is a
// no-op. A commit without a prior preview writes 0.
func (s *SpinService) Commit(app *models.Application, userID string) (SpinResult, error) {
	if app.DiscountsLocked() || app.SpinDiscountPct > 0 {
		return SpinResult{OK: false, Discount: app.SpinDiscountPct, Locked: true}, nil
	}

	win := s.takePending(app.ID)

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := s.Discounts.ApplySpin(tx, app, win); err != nil {
			return err
		}
		if err := s.Activity.RecordDay(tx, userID, time.Now()); err != nil {
			return err
		}
		if win >= 30 {
			if _, err := s.Badges.AwardDiscountBadges(tx, userID, app); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SpinResult{}, err
	}

	return SpinResult{OK: true, Discount: win, Locked: false}, nil
}

func (s *SpinService) draw() int {
	total := 0
	for _, w := range spinWeights {
		total += w
	}
	pick := s.rng.Intn(total)
	for i, w := range spinWeights {
		if pick < w {
			return spinPrizes[i]
		}
		pick -= w
	}
	return spinPrizes[len(spinPrizes)-1]
}

func (s *SpinService) takePending(appID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	slot, ok := s.pending[appID]
	if !ok {
		return 0
	}
	delete(s.pending, appID)
	if time.Since(slot.createdAt) > pendingSpinTTL {
		return 0
	}
	return slot.pct
}

// StartPendingSweeper runs a minute job that drops stale preview slots. Losing
// a slot is harmless; nothing is spent until Commit.
func (s *SpinService) StartPendingSweeper() {
	sched, _ := gocron.NewScheduler()
	sched.Start()

	_, _ = sched.NewJob(
		gocron.DurationJob(1*time.Minute),
		gocron.NewTask(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for appID, slot := range s.pending {
				if time.Since(slot.createdAt) > pendingSpinTTL {
					delete(s.pending, appID)
					log.Printf("[Spin] Expired stale preview for application %s", appID)
				}
			}
		}),
	)
}
