package compliance

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/106shubh/JeevanDhara-sub000/internal/domain/alerts"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/animals"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/treatments"
	"github.com/106shubh/JeevanDhara-sub000/internal/domain/withdrawal"
	"github.com/106shubh/JeevanDhara-sub000/internal/platform/logger"
)

// AlertRaiser es lo único que el checker necesita del módulo de alertas.
type AlertRaiser interface {
	Raise(ctx context.Context, in alerts.RaiseInput) (alerts.Alert, error)
}

// Checker recorre los períodos de retiro abiertos y levanta alertas
// por tier según los días restantes. Es el "scheduled compliance
// check" que alimenta los streams de alertas.
type Checker struct {
	treatments treatments.Repository
	animals    *animals.Service
	alerts     AlertRaiser
	thresholds withdrawal.Thresholds
	log        logger.Logger
	now        func() time.Time

	// raised dedupe por (tratamiento, tier) dentro del proceso.
	// En un restart se puede re-alertar una vez; preferible a
	// perder una alerta urgente.
	mu     sync.Mutex
	raised map[string]withdrawal.Urgency
}

func NewChecker(repo treatments.Repository, animalsSvc *animals.Service, raiser AlertRaiser, th withdrawal.Thresholds, log logger.Logger) *Checker {
	return &Checker{
		treatments: repo,
		animals:    animalsSvc,
		alerts:     raiser,
		thresholds: th,
		log:        log,
		now:        time.Now,
		raised:     make(map[string]withdrawal.Urgency),
	}
}

// Run ejecuta RunOnce cada interval hasta que ctx se cancele.
func (c *Checker) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := c.RunOnce(ctx); err != nil {
				c.log.Error("compliance check failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

// RunOnce hace una pasada completa: clasifica retiros abiertos y
// resuelve como compliant los que vencieron desde la pasada anterior.
func (c *Checker) RunOnce(ctx context.Context) error {
	now := c.now()

	items, err := c.treatments.ListActiveWithdrawals(ctx, now)
	if err != nil {
		return err
	}

	open := make(map[string]struct{}, len(items))
	for _, t := range items {
		open[t.ID] = struct{}{}
		c.checkTreatment(ctx, t, now)
	}

	c.resolveLapsed(ctx, open)
	return nil
}

func (c *Checker) checkTreatment(ctx context.Context, t treatments.Treatment, now time.Time) {
	daysLeft := daysUntil(now, t.WithdrawalUntil)
	tier := c.thresholds.Classify(daysLeft)
	if tier == withdrawal.UrgencyNormal {
		return
	}

	c.mu.Lock()
	already := c.raised[t.ID] == tier
	if !already {
		c.raised[t.ID] = tier
	}
	c.mu.Unlock()
	if already {
		return
	}

	tag := t.AnimalID
	if a, err := c.animals.GetByID(ctx, t.AnimalID); err == nil {
		tag = a.TagNumber
	}

	in := alerts.RaiseInput{
		UserID:     t.UserID,
		AnimalID:   t.AnimalID,
		AnimalTag:  tag,
		CanDismiss: false, // exige acción, no se descarta a mano
	}
	switch tier {
	case withdrawal.UrgencyUrgent:
		in.Type = alerts.TypeUrgent
		in.Title = "Withdrawal period ending"
		in.Message = fmt.Sprintf("%s: %d day(s) left on %s withdrawal", tag, daysLeft, t.DrugName)
		in.ActionRequired = "Verify residue status before releasing products"
	case withdrawal.UrgencyWarning:
		in.Type = alerts.TypeWarning
		in.Title = "Withdrawal period closing soon"
		in.Message = fmt.Sprintf("%s: %d day(s) left on %s withdrawal", tag, daysLeft, t.DrugName)
		in.ActionRequired = fmt.Sprintf("Keep products withheld until %s", t.WithdrawalUntil.Format("2006-01-02"))
	}

	if _, err := c.alerts.Raise(ctx, in); err != nil {
		c.log.Error("compliance check: raise alert failed", map[string]any{
			"treatment_id": t.ID,
			"tier":         string(tier),
			"error":        err.Error(),
		})
		// permitir reintento en la próxima pasada
		c.mu.Lock()
		delete(c.raised, t.ID)
		c.mu.Unlock()
	}
}

// resolveLapsed levanta la alerta compliant para tratamientos que ya
// no figuran entre los retiros abiertos pero sí fueron alertados.
func (c *Checker) resolveLapsed(ctx context.Context, open map[string]struct{}) {
	c.mu.Lock()
	lapsed := make([]string, 0)
	for id := range c.raised {
		if _, ok := open[id]; !ok {
			lapsed = append(lapsed, id)
			delete(c.raised, id)
		}
	}
	c.mu.Unlock()

	for _, id := range lapsed {
		t, err := c.treatments.GetByID(ctx, id)
		if err != nil {
			continue
		}

		tag := t.AnimalID
		if a, err := c.animals.GetByID(ctx, t.AnimalID); err == nil {
			tag = a.TagNumber
		}

		_, err = c.alerts.Raise(ctx, alerts.RaiseInput{
			UserID:     t.UserID,
			Type:       alerts.TypeCompliant,
			Title:      "Withdrawal period complete",
			Message:    fmt.Sprintf("%s: %s withdrawal lapsed, products may be released", tag, t.DrugName),
			CanDismiss: true,
			AnimalID:   t.AnimalID,
			AnimalTag:  tag,
		})
		if err != nil {
			c.log.Error("compliance check: raise compliant alert failed", map[string]any{
				"treatment_id": id,
				"error":        err.Error(),
			})
		}
	}
}

// daysUntil redondea hacia arriba: faltando 36hs son "2 días".
func daysUntil(now, until time.Time) int {
	return int(math.Ceil(until.Sub(now).Hours() / 24))
}
