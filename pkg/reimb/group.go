package reimb

// Group collapses summary rows into one Person per distinct Identity, in the
// order each identity is first seen. A later row for the same identity and
// location replaces the earlier facts for that location.
func Group(rows []Row) []*Person {
	var agg aggregation
	for _, row := range rows {
		agg.Add(row)
	}
	return agg.Finalize()
}

type aggregation struct {
	byIdentity map[Identity]*Person
	order      []*Person
}

func (agg *aggregation) Add(row Row) {
	if agg.byIdentity == nil {
		agg.byIdentity = make(map[Identity]*Person)
	}

	id := row.Identity()
	person, ok := agg.byIdentity[id]
	if !ok {
		person = &Person{
			Identity:  id,
			Locations: make(map[Location]Stats),
		}
		agg.byIdentity[id] = person
		agg.order = append(agg.order, person)
	}

	person.Locations[row.Location] = Stats{
		Avg:     row.AvgAllowed,
		NumRows: row.NumRows,
	}
}

func (agg *aggregation) Finalize() []*Person {
	return agg.order
}
