package scheduler

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/noah-isme/dept-timetable-api/internal/models"
)

const (
	// DefaultAttempts is the number of randomized trials when the caller sets none.
	DefaultAttempts = 20
	// MaxAttempts bounds the trial loop regardless of caller input.
	MaxAttempts = 500
)

// SolveInput describes one auto-placement run.
type SolveInput struct {
	Requirements   []models.Requirement
	LunchSlotIndex int
	// Universe holds every stored timetable used for teacher exclusivity.
	Universe []models.Timetable
	// ExcludeTimetableID skips the timetable being rebuilt when scanning Universe.
	ExcludeTimetableID string
	// FixedEntries stay where they are and are placed around.
	FixedEntries []models.Entry
	Attempts     int
	// Seed makes runs reproducible; zero picks a time based seed.
	Seed int64
	// NewBlockID labels the generated blocks of the winning trial when set.
	NewBlockID func() string
}

// Shortfall reports a requirement that was not fully placed.
type Shortfall struct {
	RequirementID string           `json:"requirementId,omitempty"`
	SubjectName   string           `json:"subjectName"`
	TeacherName   string           `json:"teacherName"`
	Type          models.EntryType `json:"type"`
	Requested     int              `json:"requested"`
	Placed        int              `json:"placed"`
}

// Missing is the number of occurrences left unplaced.
func (s Shortfall) Missing() int {
	return s.Requested - s.Placed
}

// SolveResult is the best trial of a run.
type SolveResult struct {
	Entries    []models.Entry `json:"entries"`
	Requested  int            `json:"requested"`
	Placed     int            `json:"placed"`
	Seed       int64          `json:"seed"`
	Attempt    int            `json:"attempt"`
	Attempts   int            `json:"attempts"`
	Shortfalls []Shortfall    `json:"shortfalls,omitempty"`
}

// Partial reports whether fewer blocks were placed than requested.
func (r SolveResult) Partial() bool {
	return r.Placed < r.Requested
}

// Missing is the aggregate number of unplaced blocks.
func (r SolveResult) Missing() int {
	if r.Placed >= r.Requested {
		return 0
	}
	return r.Requested - r.Placed
}

type trialResult struct {
	entries []models.Entry
	placed  int
	perReq  []int
}

type solver struct {
	in      SolveInput
	reqs    []models.Requirement
	colors  map[string]string
	fixed   []models.Entry
	seed    int64
	request int
}

// Solve runs the randomized multi-trial placement and keeps the trial with the most
// placed blocks. Unplaceable occurrences are reported, never fatal.
func Solve(in SolveInput) SolveResult {
	s := newSolver(in)
	attempts := in.Attempts
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	if attempts > MaxAttempts {
		attempts = MaxAttempts
	}

	var best trialResult
	bestAttempt, ran := -1, 0
	for attempt := 0; attempt < attempts; attempt++ {
		ran++
		result := s.trial(attempt)
		if bestAttempt < 0 || result.placed > best.placed {
			best = result
			bestAttempt = attempt
		}
		if best.placed >= s.request {
			break
		}
	}

	if in.NewBlockID != nil {
		for i := len(s.fixed); i < len(best.entries); i++ {
			best.entries[i].BlockID = in.NewBlockID()
		}
	}

	out := SolveResult{
		Entries:   best.entries,
		Requested: s.request,
		Placed:    best.placed,
		Seed:      s.seed,
		Attempt:   bestAttempt,
		Attempts:  ran,
	}
	for i, req := range s.reqs {
		if best.perReq[i] < req.FrequencyPerWeek {
			out.Shortfalls = append(out.Shortfalls, Shortfall{
				RequirementID: req.ID,
				SubjectName:   req.SubjectName,
				TeacherName:   req.TeacherName,
				Type:          req.Type,
				Requested:     req.FrequencyPerWeek,
				Placed:        best.perReq[i],
			})
		}
	}
	return out
}

func newSolver(in SolveInput) *solver {
	seed := in.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	reqs := make([]models.Requirement, 0, len(in.Requirements))
	for _, req := range in.Requirements {
		if req.FrequencyPerWeek < 1 {
			continue
		}
		if req.Type == "" {
			req.Type = models.EntryTypeSubject
		}
		req.Duration = req.BlockDuration()
		reqs = append(reqs, req)
	}

	colors := make(map[string]string)
	var keys []string
	for _, req := range reqs {
		key := requirementKey(req)
		if _, ok := colors[key]; !ok {
			colors[key] = ""
			keys = append(keys, key)
		}
	}
	for i, key := range keys {
		colors[key] = ColorFromIndex(i, len(keys))
	}

	fixed := make([]models.Entry, len(in.FixedEntries))
	for i, entry := range in.FixedEntries {
		if entry.Duration < 1 {
			entry.Duration = models.DurationFor(entry.Type)
		}
		if entry.Color == "" {
			entry.Color = ColorForLecture(entry.SubjectName, entry.Type, entry.TeacherName)
		}
		fixed[i] = entry
	}

	return &solver{
		in:      in,
		reqs:    SortRequirements(reqs),
		colors:  colors,
		fixed:   fixed,
		seed:    seed,
		request: RequestedBlocks(reqs),
	}
}

func (s *solver) trial(attempt int) trialResult {
	rng := rand.New(rand.NewSource(s.seed + int64(attempt)))
	lunch := s.in.LunchSlotIndex

	entries := make([]models.Entry, len(s.fixed), len(s.fixed)+s.request)
	copy(entries, s.fixed)
	dayLoad := make(map[models.Weekday]int, len(Days))
	for _, entry := range s.fixed {
		if ValidDay(entry.Day) {
			dayLoad[entry.Day] += entry.Span()
		}
	}
	lectureDays := make(map[string]map[models.Weekday]int)
	perReq := make([]int, len(s.reqs))
	placed, serial := 0, 0

	order := make([]int, len(s.reqs))
	for i := range order {
		order[i] = i
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	for _, idx := range order {
		req := s.reqs[idx]
		key := requirementKey(req)
		if lectureDays[key] == nil {
			lectureDays[key] = make(map[models.Weekday]int, len(Days))
		}
		perDay := lectureDays[key]
		color := req.Color
		if color == "" {
			color = s.colors[key]
		}

		for occurrence := 0; occurrence < req.FrequencyPerWeek; occurrence++ {
			block := models.Entry{
				SubjectName: req.SubjectName,
				TeacherName: req.TeacherName,
				Type:        req.Type,
				Duration:    req.Duration,
				Color:       color,
			}
			committed := false
			for _, day := range candidateDays(rng, occurrence, perDay, dayLoad) {
				for _, slot := range candidateSlots(rng, entries, block, day, lunch) {
					block.Day = day
					block.SlotIndex = slot
					if !CanPlace(entries, block, lunch, "") {
						continue
					}
					if FindTeacherConflict(s.in.Universe, block.TeacherName, day, slot, block.Duration, s.in.ExcludeTimetableID) != nil {
						continue
					}
					serial++
					block.BlockID = fmt.Sprintf("tb%d-%d-%d", s.seed, attempt, serial)
					entries = append(entries, block)
					dayLoad[day] += block.Duration
					perDay[day]++
					perReq[idx]++
					placed++
					committed = true
					break
				}
				if committed {
					break
				}
			}
		}
	}
	return trialResult{entries: entries, placed: placed, perReq: perReq}
}

type dayCandidate struct {
	day     models.Weekday
	lecture int
	load    int
	rotated int
	tie     float64
}

// candidateDays orders days by fewest sessions of this lecture, lightest load, a
// rotating pivot and finally a random key.
func candidateDays(rng *rand.Rand, occurrence int, perDay, dayLoad map[models.Weekday]int) []models.Weekday {
	n := len(Days)
	pivot := (occurrence + rng.Intn(n)) % n
	cands := make([]dayCandidate, n)
	for i, day := range Days {
		cands[i] = dayCandidate{
			day:     day,
			lecture: perDay[day],
			load:    dayLoad[day],
			rotated: (i - pivot + n) % n,
			tie:     rng.Float64(),
		}
	}
	sort.Slice(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.lecture != b.lecture {
			return a.lecture < b.lecture
		}
		if a.load != b.load {
			return a.load < b.load
		}
		if a.rotated != b.rotated {
			return a.rotated < b.rotated
		}
		return a.tie < b.tie
	})
	days := make([]models.Weekday, n)
	for i, c := range cands {
		days[i] = c.day
	}
	return days
}

type slotCandidate struct {
	slot       int
	gaps       int
	contiguous bool
}

// candidateSlots orders the start slots of a day so that placements keeping a
// gap-free day gap-free come first, then fewer gaps, then a random order.
func candidateSlots(rng *rand.Rand, entries []models.Entry, block models.Entry, day models.Weekday, lunch int) []int {
	wasContiguous := dayGapCount(entries, day, lunch) == 0
	probe := make([]models.Entry, len(entries), len(entries)+1)
	copy(probe, entries)
	probe = append(probe, block)
	last := len(probe) - 1

	cands := make([]slotCandidate, 0, SlotCount)
	for _, slot := range rng.Perm(SlotCount) {
		if !InBounds(slot, block.Span()) || coversSlot(slot, block.Span(), lunch) {
			continue
		}
		probe[last].Day = day
		probe[last].SlotIndex = slot
		gaps := dayGapCount(probe, day, lunch)
		cands = append(cands, slotCandidate{
			slot:       slot,
			gaps:       gaps,
			contiguous: !wasContiguous || gaps == 0,
		})
	}
	sort.SliceStable(cands, func(i, j int) bool {
		a, b := cands[i], cands[j]
		if a.contiguous != b.contiguous {
			return a.contiguous
		}
		return a.gaps < b.gaps
	})
	slots := make([]int, len(cands))
	for i, c := range cands {
		slots[i] = c.slot
	}
	return slots
}
