package extract

import "sync"

// Progress stage indexes, in walk order
const (
	StageMetadata = iota
	StagePages
	StageFonts
	stageCount
)

// metadataSteps covers opening the document and reading its metadata
const metadataSteps = 2

var stageNames = [stageCount]string{"Metadata", "Pages", "Fonts"}

// StageProgress is a snapshot of one counter. Total is -1 while unknown.
type StageProgress struct {
	Name  string
	Done  int
	Total int
}

// Percent returns the completion of this counter. An unknown total reports
// 0 and a zero total reports 100.
func (s StageProgress) Percent() int {
	switch {
	case s.Total < 0:
		return 0
	case s.Total == 0 || s.Done >= s.Total:
		return 100
	default:
		return s.Done * 100 / s.Total
	}
}

// Progress tracks the three ordered counters of one file. It is safe for
// concurrent use.
type Progress struct {
	mu      sync.Mutex
	stages  [stageCount]StageProgress
	started bool
	failed  bool
}

// NewProgress returns fresh counters: metadata has a fixed step count, the
// page count is unknown and no fonts have been seen.
func NewProgress() *Progress {
	p := &Progress{}
	for i := range p.stages {
		p.stages[i].Name = stageNames[i]
	}
	p.stages[StageMetadata].Total = metadataSteps
	p.stages[StagePages].Total = -1
	return p
}

// Start marks the file as started
func (p *Progress) Start() {
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()
}

// Fail marks the file as failed
func (p *Progress) Fail() {
	p.mu.Lock()
	p.failed = true
	p.mu.Unlock()
}

// SetTotal sets a counter's total
func (p *Progress) SetTotal(stage, total int) {
	p.mu.Lock()
	p.stages[stage].Total = total
	p.mu.Unlock()
}

// AddTotal grows a counter's total, treating an unknown total as 0
func (p *Progress) AddTotal(stage, n int) {
	p.mu.Lock()
	if p.stages[stage].Total < 0 {
		p.stages[stage].Total = 0
	}
	p.stages[stage].Total += n
	p.mu.Unlock()
}

// Step advances a counter by one
func (p *Progress) Step(stage int) {
	p.mu.Lock()
	p.stages[stage].Done++
	p.mu.Unlock()
}

// Stages returns a snapshot of all counters in walk order
func (p *Progress) Stages() []StageProgress {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]StageProgress, stageCount)
	copy(out, p.stages[:])
	return out
}

// Active returns the first counter not at 100%, or the last counter when
// all are complete.
func (p *Progress) Active() StageProgress {
	stages := p.Stages()
	for _, s := range stages {
		if s.Percent() < 100 {
			return s
		}
	}
	return stages[len(stages)-1]
}

// Percent walks the counters in order and returns the percent of the first
// incomplete one; 100 only when every counter is complete.
func (p *Progress) Percent() int {
	return p.Active().Percent()
}

// Complete reports whether every counter is at 100%
func (p *Progress) Complete() bool {
	for _, s := range p.Stages() {
		if s.Percent() < 100 {
			return false
		}
	}
	return true
}

// State derives the lifecycle state from the counters
func (p *Progress) State() State {
	p.mu.Lock()
	started, failed := p.started, p.failed
	p.mu.Unlock()

	switch {
	case failed:
		return StateFailed
	case !started:
		return StateIdle
	}
	stages := p.Stages()
	switch {
	case stages[StageMetadata].Percent() < 100:
		return StateMetadataPending
	case stages[StagePages].Percent() < 100:
		return StatePagesPending
	case stages[StageFonts].Percent() < 100:
		return StateFontsPending
	default:
		return StateComplete
	}
}
