package grid

// Periodicity holds the period length in each periodic direction, zero
// meaning not periodic.
type Periodicity struct {
	Period IntVect
}

func NonPeriodic() Periodicity { return Periodicity{} }

func (p Periodicity) IsPeriodic(d int) bool { return p.Period[d] > 0 }

func (p Periodicity) IsAnyPeriodic() bool {
	return p.IsPeriodic(0) || p.IsPeriodic(1) || p.IsPeriodic(2)
}

// Shifts lists every periodic image offset, the zero shift first
func (p Periodicity) Shifts() (shifts []IntVect) {
	var ranges [3][]int
	for d := 0; d < 3; d++ {
		if p.IsPeriodic(d) {
			ranges[d] = []int{0, -p.Period[d], p.Period[d]}
		} else {
			ranges[d] = []int{0}
		}
	}
	for _, k := range ranges[2] {
		for _, j := range ranges[1] {
			for _, i := range ranges[0] {
				shifts = append(shifts, IntVect{i, j, k})
			}
		}
	}
	return
}

// Wrap maps iv back into domain along the periodic directions
func (p Periodicity) Wrap(iv IntVect, domain Box) IntVect {
	for d := 0; d < 3; d++ {
		if !p.IsPeriodic(d) {
			continue
		}
		for iv[d] < domain.Lo[d] {
			iv[d] += p.Period[d]
		}
		for iv[d] > domain.Hi[d] {
			iv[d] -= p.Period[d]
		}
	}
	return iv
}
