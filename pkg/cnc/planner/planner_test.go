package planner

import (
	"testing"

	"github.com/itohio/cncmotion/pkg/cnc/config"
	"github.com/itohio/cncmotion/pkg/cnc/vec"
)

func mustConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.New(config.Default())
	if err != nil {
		t.Fatalf("config.New: %v", err)
	}
	return cfg
}

// TestPlannerFourBlockSequence reproduces the literal four-block queue
// scenario: a sys-motion to (10,10,10) from zero, a normal move to the
// same (10,10,10) target that must be rejected as a zero-length move
// (the sys-motion has already advanced the planner's position cursor to
// (10,10,10), even though it measured its own delta from the explicit
// previous-steps it was given), a second sys-motion from (0,0,0) to
// (10,10,10), then two normal moves extending the path to (11,10,10)
// and (11,11,10).
func TestPlannerFourBlockSequence(t *testing.T) {
	cfg := mustConfig(t)
	p := New(cfg)

	data := PlanLineData{FeedRate: 0, SpindleSpeed: 0}

	zero := vec.NewStep3(0, 0, 0)
	target := vec.NewVec3(10, 10, 10)

	if err := p.PushSysMotion(target, data, zero); err != nil {
		t.Fatalf("PushSysMotion: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}

	if err := p.PushNormalMotion(target, data); err == nil {
		t.Errorf("expected the repeated target to be rejected as a zero-length move")
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (rejected move must not be queued)", p.Len())
	}

	if err := p.PushSysMotion(target, data, zero); err != nil {
		t.Fatalf("PushSysMotion: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	if err := p.PushNormalMotion(vec.NewVec3(11, 10, 10), data); err != nil {
		t.Fatalf("PushNormalMotion: %v", err)
	}
	if p.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", p.Len())
	}

	if err := p.PushNormalMotion(vec.NewVec3(11, 11, 10), data); err != nil {
		t.Fatalf("PushNormalMotion: %v", err)
	}
	if p.Len() != 4 {
		t.Fatalf("Len() = %d, want 4", p.Len())
	}

	want := [4]float32{0, 0, 0, 1.0}
	for i, b := range p.blockBuffer {
		if b.EntrySpeedSqr != want[i] {
			t.Errorf("blockBuffer[%d].EntrySpeedSqr = %v, want %v", i, b.EntrySpeedSqr, want[i])
		}
	}

	block, _, ok := p.CurrentBlock()
	if !ok {
		t.Fatalf("expected a current block")
	}
	if block.EntrySpeedSqr != want[0] {
		t.Errorf("first queued block entry speed sqr = %v, want %v (sys-motion)", block.EntrySpeedSqr, want[0])
	}
}

func TestPlannerSysMotionBypassesJunctionLookahead(t *testing.T) {
	cfg := mustConfig(t)
	p := New(cfg)

	data := PlanLineData{FeedRate: 0, SpindleSpeed: 0}
	sysPos := vec.NewStep3(0, 0, 0)

	if err := p.PushSysMotion(vec.NewVec3(10, 10, 10), data, sysPos); err != nil {
		t.Fatalf("PushSysMotion: %v", err)
	}

	block, exit, ok := p.CurrentBlock()
	if !ok {
		t.Fatalf("expected a current block")
	}
	if block.EntrySpeedSqr != 0 {
		t.Errorf("sys-motion entry speed sqr = %v, want 0", block.EntrySpeedSqr)
	}
	if exit != 0 {
		t.Errorf("exit speed sqr = %v, want 0 (only one block queued)", exit)
	}
}

func TestPlannerDiscardCurrentBlock(t *testing.T) {
	cfg := mustConfig(t)
	p := New(cfg)
	data := PlanLineData{FeedRate: 100}

	if err := p.PushNormalMotion(vec.NewVec3(10, 0, 0), data); err != nil {
		t.Fatalf("PushNormalMotion: %v", err)
	}
	if err := p.PushNormalMotion(vec.NewVec3(20, 0, 0), data); err != nil {
		t.Fatalf("PushNormalMotion: %v", err)
	}
	if p.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", p.Len())
	}

	p.DiscardCurrentBlock()
	if p.Len() != 1 {
		t.Errorf("Len() after discard = %d, want 1", p.Len())
	}
}

func TestPlanBlockToStepProfile(t *testing.T) {
	cfg := mustConfig(t)
	p := New(cfg)
	data := PlanLineData{FeedRate: 100}

	if err := p.PushNormalMotion(vec.NewVec3(10, 0, 0), data); err != nil {
		t.Fatalf("PushNormalMotion: %v", err)
	}

	block, exitSqr, ok := p.CurrentBlock()
	if !ok {
		t.Fatalf("expected a current block")
	}

	profile, dirs, ok := block.ToStepProfile(cfg, exitSqr)
	if !ok {
		t.Fatalf("expected a step profile")
	}
	if dirs[0] != DirectionForward {
		t.Errorf("dirs[0] = %v, want Forward", dirs[0])
	}

	count := 0
	for {
		_, _, more := profile.NextProfile()
		if !more {
			break
		}
		count++
		if count > 100000 {
			t.Fatalf("profile did not terminate")
		}
	}
	if count == 0 {
		t.Errorf("expected at least one step")
	}
}
