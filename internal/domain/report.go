package domain

// NoRouteLabel is the reporting bucket for slots without an assigned
// route. The Spanish label is part of the reporting contract.
const NoRouteLabel = "Sin Ruta"

// MatrixCell is one filled cell of a student's weekly schedule grid.
type MatrixCell struct {
	StopTime    string
	RouteNumber string
	Note        string
}

// WeeklyMatrix maps weekday and period to the slot data shown there.
// Absent keys mean an empty cell.
type WeeklyMatrix map[Weekday]map[Period]MatrixCell

func (m WeeklyMatrix) Cell(day Weekday, period Period) (MatrixCell, bool) {
	periods, ok := m[day]
	if !ok {
		return MatrixCell{}, false
	}
	cell, ok := periods[period]
	return cell, ok
}

// PeriodCounts is the distinct-student tally for one route.
type PeriodCounts struct {
	AM int
	MD int
	PM int
	EX int
}

func (c *PeriodCounts) Add(period Period) {
	switch period {
	case PeriodAM:
		c.AM++
	case PeriodMD:
		c.MD++
	case PeriodPM:
		c.PM++
	case PeriodEX:
		c.EX++
	}
}

func (c PeriodCounts) Of(period Period) int {
	switch period {
	case PeriodAM:
		return c.AM
	case PeriodMD:
		return c.MD
	case PeriodPM:
		return c.PM
	case PeriodEX:
		return c.EX
	default:
		return 0
	}
}

func (c PeriodCounts) Total() int {
	return c.AM + c.MD + c.PM + c.EX
}
