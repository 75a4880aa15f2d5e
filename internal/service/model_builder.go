package service

import (
	"github.com/uraniaedu/urania-api/internal/cpsat"
	"github.com/uraniaedu/urania-api/internal/models"
)

// domainSnapshot is the consistent read of the domain a generation run works
// on. Entities live in flat slices; relationships are ids.
type domainSnapshot struct {
	Curriculum   []models.CurriculumRow
	Teachers     []models.Teacher
	ClassGroups  []models.ClassGroup
	Rooms        []models.Room
	Availability map[int64][]models.TeacherAvailability
}

// siteIDs returns the distinct sites that have rooms.
func (s *domainSnapshot) siteIDs() []int64 {
	seen := make(map[int64]bool)
	var sites []int64
	for _, room := range s.Rooms {
		if !seen[room.SiteID] {
			seen[room.SiteID] = true
			sites = append(sites, room.SiteID)
		}
	}
	return sites
}

// totalLessons sums the weekly demand of the curriculum.
func (s *domainSnapshot) totalLessons() int {
	total := 0
	for _, row := range s.Curriculum {
		total += row.LessonsPerWeek
	}
	return total
}

// blockedDays maps a teacher to the set of grid day indexes blocked by an
// available=false row. The block covers the whole day; start/end times on the
// row are not consulted.
func (s *domainSnapshot) blockedDays() map[int64]map[int]bool {
	dayIndex := make(map[string]int, len(models.GridDays))
	for i, day := range models.GridDays {
		dayIndex[day] = i
	}
	blocked := make(map[int64]map[int]bool)
	for teacherID, rows := range s.Availability {
		for _, row := range rows {
			if row.Available {
				continue
			}
			idx, onGrid := dayIndex[row.Day]
			if !onGrid {
				continue
			}
			if blocked[teacherID] == nil {
				blocked[teacherID] = make(map[int]bool)
			}
			blocked[teacherID][idx] = true
		}
	}
	return blocked
}

// buildOptions are the advisory toggles of a generation run.
type buildOptions struct {
	LimitGaps           bool
	RespectTransit      bool
	UniformDistribution bool
}

// lessonVar ties a solver variable to the placement it encodes.
type lessonVar struct {
	id      int
	rowIdx  int
	day     int
	period  int
	roomIdx int
}

// timetableModel is the built CSP plus the index needed to decode solutions.
type timetableModel struct {
	model *cpsat.Model
	vars  []lessonVar
}

// slotVars accumulates variable ids per (day, period) for one resource.
type slotVars [models.DaysPerWeek * models.PeriodsPerDay][]int

func slotOf(day, period int) int {
	return day*models.PeriodsPerDay + period
}

// buildTimetableModel translates the snapshot into the solver model:
// one boolean per (curriculum row, repetition, day, period, room), clique
// constraints per class group / teacher / room slot, the teacher workload
// rules, and the soft gap objective.
func buildTimetableModel(snap *domainSnapshot, opts buildOptions) *timetableModel {
	m := cpsat.NewModel()
	tm := &timetableModel{model: m}

	classSlots := make(map[int64]*slotVars)
	teacherSlots := make(map[int64]*slotVars)
	roomSlots := make(map[int64]*slotVars)
	// teacher -> site -> slot vars, only needed for transit constraints
	teacherSiteSlots := make(map[int64]map[int64]*slotVars)

	blocked := snap.blockedDays()

	for rowIdx, row := range snap.Curriculum {
		prevGroup := -1
		for k := 0; k < row.LessonsPerWeek; k++ {
			groupVars := make([]int, 0, len(models.GridDays)*models.PeriodsPerDay*len(snap.Rooms))
			for day := range models.GridDays {
				for period := 0; period < models.PeriodsPerDay; period++ {
					for roomIdx, room := range snap.Rooms {
						v := m.NewVar(slotOf(day, period))
						tm.vars = append(tm.vars, lessonVar{id: v, rowIdx: rowIdx, day: day, period: period, roomIdx: roomIdx})
						groupVars = append(groupVars, v)

						if blocked[row.TeacherID][day] {
							m.Forbid(v)
						}

						slot := slotOf(day, period)
						ensureSlots(classSlots, row.ClassGroupID).append(slot, v)
						ensureSlots(teacherSlots, row.TeacherID).append(slot, v)
						ensureSlots(roomSlots, room.ID).append(slot, v)

						if teacherSiteSlots[row.TeacherID] == nil {
							teacherSiteSlots[row.TeacherID] = make(map[int64]*slotVars)
						}
						ensureSlots(teacherSiteSlots[row.TeacherID], room.SiteID).append(slot, v)
					}
				}
			}
			group := m.AddExactlyOne(groupVars)
			if prevGroup >= 0 {
				m.ChainGroups(prevGroup, group)
			}
			prevGroup = group
		}
	}

	addCliques(m, classSlots)
	addCliques(m, teacherSlots)
	addCliques(m, roomSlots)

	for _, teacher := range snap.Teachers {
		slots := teacherSlots[teacher.ID]
		if slots == nil {
			continue
		}
		addConsecutiveLimit(m, slots, teacher.MaxConsecutive)
		addDailyLimit(m, slots, teacher.MaxDaily)
		addWeeklyReserve(m, slots, teacher)
	}

	if opts.RespectTransit && len(snap.siteIDs()) > 1 {
		for _, teacher := range snap.Teachers {
			addTransitConstraints(m, teacherSiteSlots[teacher.ID], teacher.TransitMinutes)
		}
	}

	if opts.LimitGaps {
		for _, teacher := range snap.Teachers {
			addGapObjective(m, teacherSlots[teacher.ID])
		}
	}

	if opts.UniformDistribution {
		addBalanceObjective(m, tm.vars)
	}

	return tm
}

func ensureSlots(table map[int64]*slotVars, key int64) *slotVars {
	if table[key] == nil {
		table[key] = &slotVars{}
	}
	return table[key]
}

func (s *slotVars) append(slot, v int) {
	s[slot] = append(s[slot], v)
}

// addCliques forbids double-booking: at most one lesson per resource per slot.
func addCliques(m *cpsat.Model, table map[int64]*slotVars) {
	for _, slots := range table {
		for _, vars := range slots {
			m.AddAtMost(vars, 1)
		}
	}
}

// addConsecutiveLimit forbids any run of limit+1 back-to-back lessons.
func addConsecutiveLimit(m *cpsat.Model, slots *slotVars, limit int) {
	if limit <= 0 || limit >= models.PeriodsPerDay {
		return
	}
	for day := range models.GridDays {
		for start := 0; start+limit < models.PeriodsPerDay; start++ {
			var window []int
			for period := start; period <= start+limit; period++ {
				window = append(window, slots[slotOf(day, period)]...)
			}
			m.AddAtMost(window, limit)
		}
	}
}

// addDailyLimit caps a teacher's lessons per day.
func addDailyLimit(m *cpsat.Model, slots *slotVars, limit int) {
	if limit <= 0 {
		return
	}
	for day := range models.GridDays {
		var dayVars []int
		for period := 0; period < models.PeriodsPerDay; period++ {
			dayVars = append(dayVars, slots[slotOf(day, period)]...)
		}
		m.AddAtMost(dayVars, limit)
	}
}

// addWeeklyReserve keeps room in the weekly load for activity hours: teaching
// lessons may use at most (max load - reserve) hours of the week.
func addWeeklyReserve(m *cpsat.Model, slots *slotVars, teacher models.Teacher) {
	if teacher.ActivityHours <= 0 {
		return
	}
	teachingHours := teacher.MaxWeeklyLoad - teacher.ActivityHours
	maxLessons := 0
	if teachingHours > 0 {
		maxLessons = teachingHours * 60 / models.PeriodLengthMin
	}
	var all []int
	for _, vars := range slots {
		all = append(all, vars...)
	}
	m.AddAtMost(all, maxLessons)
}

// addTransitConstraints keeps enough free periods between lessons on
// different sites. Both orders of every site pair are enumerated, so the
// restriction is symmetric.
func addTransitConstraints(m *cpsat.Model, siteSlots map[int64]*slotVars, transitMinutes int) {
	if transitMinutes <= 0 || len(siteSlots) < 2 {
		return
	}
	span := (transitMinutes + models.PeriodLengthMin - 1) / models.PeriodLengthMin
	if span < 1 {
		span = 1
	}
	for day := range models.GridDays {
		for period := 0; period < models.PeriodsPerDay; period++ {
			for offset := 1; offset <= span; offset++ {
				next := period + offset
				if next >= models.PeriodsPerDay {
					break
				}
				for fromSite, fromSlots := range siteSlots {
					for toSite, toSlots := range siteSlots {
						if fromSite == toSite {
							continue
						}
						fromVars := fromSlots[slotOf(day, period)]
						toVars := toSlots[slotOf(day, next)]
						if len(fromVars) == 0 || len(toVars) == 0 {
							continue
						}
						pair := make([]int, 0, len(fromVars)+len(toVars))
						pair = append(pair, fromVars...)
						pair = append(pair, toVars...)
						m.AddAtMost(pair, 1)
					}
				}
			}
		}
	}
}

// addGapObjective penalises a free period flanked by lessons on both sides.
func addGapObjective(m *cpsat.Model, slots *slotVars) {
	if slots == nil {
		return
	}
	for day := range models.GridDays {
		for period := 0; period+2 < models.PeriodsPerDay; period++ {
			m.AddGapTerm(
				slots[slotOf(day, period)],
				slots[slotOf(day, period+1)],
				slots[slotOf(day, period+2)],
			)
		}
	}
}

// addBalanceObjective nudges the solver toward an even per-day lesson count.
func addBalanceObjective(m *cpsat.Model, vars []lessonVar) {
	buckets := make([][]int, len(models.GridDays))
	for _, lv := range vars {
		buckets[lv.day] = append(buckets[lv.day], lv.id)
	}
	m.AddBalanceTerm(buckets)
}
