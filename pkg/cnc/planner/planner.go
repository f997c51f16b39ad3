// Package planner implements C8, the look-ahead motion planner: it
// buffers linear motion blocks, derives each block's junction-speed
// limit from its neighbors, and runs the classic reverse/forward
// recalculation pass to maximize entry speed without violating any
// block's acceleration budget.
package planner

import (
	"errors"

	"github.com/chewxy/math32"

	"github.com/itohio/cncmotion/pkg/cnc/config"
	"github.com/itohio/cncmotion/pkg/cnc/motion"
	"github.com/itohio/cncmotion/pkg/cnc/vec"
	"github.com/itohio/cncmotion/pkg/logger"
)

// ErrEmptyMove is returned when a requested motion resolves to zero
// step displacement; the planner silently ignores such requests in the
// original controller, but here the caller is told why nothing queued.
var ErrEmptyMove = errors.New("cnc/planner: target resolves to a zero-length move")

// Direction is the sign of a single axis's motion within a block.
type Direction int32

const (
	DirectionForward  Direction = 1
	DirectionBackward Direction = -1
)

func directionOf(steps int32) Direction {
	if steps >= 0 {
		return DirectionForward
	}
	return DirectionBackward
}

// PlanCondition is a bitset of per-block run conditions, mirroring a
// G-code line's modal state at the moment it was queued.
type PlanCondition uint32

const (
	CondRapidMotion    PlanCondition = 1 << 0
	CondNoFeedOverride PlanCondition = 1 << 2
	CondInverseTime    PlanCondition = 1 << 3
	CondSpindleCW      PlanCondition = 1 << 4
	CondSpindleCCW     PlanCondition = 1 << 5
	CondCoolantFlood   PlanCondition = 1 << 6
	CondCoolantMist    PlanCondition = 1 << 7
)

// Has reports whether flag is set in c.
func (c PlanCondition) Has(flag PlanCondition) bool { return c&flag != 0 }

// PlanLineData is the caller-supplied request for a single queued move.
type PlanLineData struct {
	FeedRate     float32
	SpindleSpeed float32
	Condition    PlanCondition
}

// PlanBlock is a single queued linear movement, expressed in the XY
// canonical-plane frame throughout.
type PlanBlock struct {
	Millimeters float32
	Steps       vec.Step3
	Condition   PlanCondition

	EntrySpeedSqr    float32
	maxEntrySpeedSqr float32

	Acceleration        float32
	maxJunctionSpeedSqr float32

	RapidRate      float32
	NominalSpeed   float32
	ProgrammedRate float32

	SpindleSpeed float32
	IsSysMotion  bool
}

// ToStepProfile builds a step-paced motion.Profile for this block: an
// S-curve schedule over the block's step count, running between this
// block's entry speed and the given exit speed. Returns false for a
// zero-length block (which should never be queued, but is handled the
// way the upstream controller handles it: do nothing).
func (b *PlanBlock) ToStepProfile(cfg *config.Config, exitSpeedSqr float32) (motion.Profile, [3]Direction, bool) {
	if b.Millimeters == 0 {
		return nil, [3]Direction{}, false
	}

	dirs := [3]Direction{
		directionOf(b.Steps.X),
		directionOf(b.Steps.Y),
		directionOf(b.Steps.Z),
	}

	unitVec := cfg.StepPosToMMPos(b.Steps, vec.PlaneXY).Unit()

	maxAcceleration := cfg.MMToSteps(unitVec, vec.PlaneXY, b.Acceleration)
	maxVelocity := cfg.MMToSteps(unitVec, vec.PlaneXY, b.NominalSpeed)
	enterVelocity := cfg.MMToSteps(unitVec, vec.PlaneXY, math32.Sqrt(b.EntrySpeedSqr))
	endVelocity := cfg.MMToSteps(unitVec, vec.PlaneXY, math32.Sqrt(exitSpeedSqr))
	distance := cfg.MMToSteps(unitVec, vec.PlaneXY, b.Millimeters)

	sc := motion.NewSCurveProfile(distance, b.Steps, maxAcceleration, maxVelocity, enterVelocity, endVelocity)
	return &sc, dirs, true
}

// previousVar snapshots the planner position and previous-segment
// direction/speed needed to evaluate the next junction. A sys-motion
// block updates only steps, leaving the direction/speed fields untouched.
type previousVar struct {
	steps               vec.Step3
	previousUnitVec     vec.Vec3
	previousNominalSpeed float32
}

// Planner is a FIFO queue of PlanBlock, kept continuously optimally
// planned: every normal-motion push re-derives entry speeds for the
// unplanned tail via recalculate; sys-motion pushes do not run it.
type Planner struct {
	cfg *config.Config

	blockBuffer []PlanBlock
	prevar      previousVar

	planned    int
	hasPlanned bool
}

// New builds an empty Planner bound to cfg's machine limits.
func New(cfg *config.Config) *Planner {
	return &Planner{cfg: cfg}
}

// GetPreviousSteps returns the planner's current absolute step position.
func (p *Planner) GetPreviousSteps() vec.Step3 { return p.prevar.steps }

// Len returns the number of queued blocks.
func (p *Planner) Len() int { return len(p.blockBuffer) }

// DiscardCurrentBlock removes the first (oldest) block, e.g. once a
// consumer has finished stepping it.
func (p *Planner) DiscardCurrentBlock() {
	if len(p.blockBuffer) == 0 {
		return
	}
	p.blockBuffer = p.blockBuffer[1:]
	if p.hasPlanned {
		if p.planned == 0 {
			p.hasPlanned = false
		} else {
			p.planned--
		}
	}
}

// CurrentBlock returns the first queued block and its exit speed
// squared (the next block's entry speed, or 0 if it is the only block
// queued), or ok=false if the queue is empty.
func (p *Planner) CurrentBlock() (block *PlanBlock, exitSpeedSqr float32, ok bool) {
	if len(p.blockBuffer) == 0 {
		return nil, 0, false
	}
	if len(p.blockBuffer) > 1 {
		exitSpeedSqr = p.blockBuffer[1].EntrySpeedSqr
	}
	return &p.blockBuffer[0], exitSpeedSqr, true
}

// PushNormalMotion queues a feed-rate-governed move to target (absolute
// machine position, mm), subject to junction-speed look-ahead.
func (p *Planner) PushNormalMotion(target vec.Vec3, data PlanLineData) error {
	return p.planBufferLine(target, data, nil)
}

// PushSysMotion queues a system move (homing, parking) that bypasses
// junction-speed look-ahead and does not update the planner's tracked
// previous-segment direction and nominal speed. previousSteps is the
// position the move starts from, overriding the planner's own tracked
// position; the tracked position is then advanced to target.
func (p *Planner) PushSysMotion(target vec.Vec3, data PlanLineData, previousSteps vec.Step3) error {
	return p.planBufferLine(target, data, &previousSteps)
}

func (p *Planner) planBufferLine(target vec.Vec3, data PlanLineData, previousSteps *vec.Step3) error {
	isSysMotion := previousSteps != nil
	targetSteps := p.cfg.MMPosToStepPos(target, vec.PlaneXY)

	var steps vec.Step3
	if previousSteps != nil {
		steps = targetSteps.Sub(*previousSteps)
	} else {
		steps = targetSteps.Sub(p.prevar.steps)
	}

	vecMillim := p.cfg.StepPosToMMPos(steps, vec.PlaneXY)
	distance := vecMillim.Magnitude()
	if distance == 0 {
		return ErrEmptyMove
	}
	unitVec := vecMillim.Unit()

	acceleration := p.cfg.GetMaxAcceleration(unitVec)
	rapidRate := p.cfg.GetMaxVelocity(unitVec)

	var programmedRate float32
	if data.Condition.Has(CondRapidMotion) {
		programmedRate = rapidRate
	} else {
		rate := data.FeedRate
		if data.Condition.Has(CondInverseTime) {
			rate *= distance
		}
		programmedRate = rate
	}

	block := PlanBlock{
		Condition:      data.Condition,
		SpindleSpeed:   data.SpindleSpeed,
		Steps:          steps,
		Millimeters:    distance,
		Acceleration:   acceleration,
		RapidRate:      rapidRate,
		ProgrammedRate: programmedRate,
		IsSysMotion:    isSysMotion,
	}

	if isSysMotion {
		p.blockBuffer = append(p.blockBuffer, block)
		// A system motion still advances the planner's absolute
		// position cursor so the next queued move (system or normal)
		// measures its own delta from where the machine actually ends
		// up; only the previous-unit-vector/nominal-speed junction
		// snapshot is left untouched (see PushSysMotion).
		p.prevar.steps = targetSteps
		logger.Log.Debug().Str("kind", "sys").Msg("planner: block queued")
		return nil
	}

	var maxJunctionSpeedSqr float32
	if len(p.blockBuffer) > 0 {
		maxJunctionSpeedSqr = p.cfg.CalcMaxJunctionSpeedSqr(p.prevar.previousUnitVec, unitVec)
	}
	nominalSpeed := p.cfg.GetNominalSpeed(rapidRate, programmedRate,
		data.Condition.Has(CondRapidMotion), data.Condition.Has(CondNoFeedOverride))
	maxEntrySpeedSqr := computeProfileMaxEntrySpeedSqr(maxJunctionSpeedSqr, nominalSpeed, p.prevar.previousNominalSpeed)

	block.maxJunctionSpeedSqr = maxJunctionSpeedSqr
	block.maxEntrySpeedSqr = maxEntrySpeedSqr
	block.NominalSpeed = nominalSpeed

	p.prevar.previousNominalSpeed = nominalSpeed
	p.prevar.previousUnitVec = unitVec
	p.prevar.steps = targetSteps

	if n := len(p.blockBuffer); n > 0 && p.blockBuffer[n-1].IsSysMotion {
		block.maxEntrySpeedSqr = 0
	}

	p.blockBuffer = append(p.blockBuffer, block)
	logger.Log.Debug().
		Float64("nominal_speed", float64(nominalSpeed)).
		Float64("max_entry_speed_sqr", float64(maxEntrySpeedSqr)).
		Msg("planner: block queued")

	p.recalculate()
	return nil
}

func computeProfileMaxEntrySpeedSqr(maxJunctionSpeedSqr, nominalSpeed, prevNominalSpeed float32) float32 {
	var maxEntrySpeedSqr float32
	if nominalSpeed > prevNominalSpeed {
		maxEntrySpeedSqr = prevNominalSpeed * prevNominalSpeed
	} else {
		maxEntrySpeedSqr = nominalSpeed * nominalSpeed
	}
	return math32.Min(maxEntrySpeedSqr, maxJunctionSpeedSqr)
}

// recalculate runs the reverse pass (treat the whole unplanned tail as
// a deceleration to a stop) followed by the forward pass (re-accelerate
// from the already-optimal prefix, advancing the planned pointer past
// every block proven optimal).
func (p *Planner) recalculate() {
	bufLen := len(p.blockBuffer)
	if bufLen == 0 {
		return
	}
	if !p.hasPlanned {
		p.planned = 0
		p.hasPlanned = true
	}

	lastIndex := bufLen - 1
	if lastIndex == p.planned {
		return
	}

	getEndSpeedSqr := func(v0Sqr, accel, s float32) float32 {
		return 2*accel*s + v0Sqr
	}

	last := &p.blockBuffer[lastIndex]
	last.EntrySpeedSqr = math32.Min(last.maxEntrySpeedSqr, getEndSpeedSqr(0, last.Acceleration, last.Millimeters))

	for index := lastIndex - 1; index > p.planned; index-- {
		nextEntrySpeedSqr := p.blockBuffer[index+1].EntrySpeedSqr
		c := &p.blockBuffer[index]
		if c.EntrySpeedSqr != c.maxEntrySpeedSqr {
			c.EntrySpeedSqr = math32.Min(c.maxEntrySpeedSqr, getEndSpeedSqr(nextEntrySpeedSqr, c.Acceleration, c.Millimeters))
		}
	}

	for index := p.planned; index < lastIndex; index++ {
		curEntrySpeedSqr := p.blockBuffer[index].EntrySpeedSqr
		curAcc := p.blockBuffer[index].Acceleration
		curMills := p.blockBuffer[index].Millimeters

		next := &p.blockBuffer[index+1]
		if curEntrySpeedSqr < next.EntrySpeedSqr {
			sqr := getEndSpeedSqr(curEntrySpeedSqr, curAcc, curMills)
			if sqr < next.EntrySpeedSqr {
				next.EntrySpeedSqr = sqr
				p.planned = index + 1
			}
		}
		if next.EntrySpeedSqr == next.maxEntrySpeedSqr {
			p.planned = index + 1
		}
	}
}
