package ledger

import (
	"chitfund-service/internal/core/workbook"
	"chitfund-service/internal/domain"
)

// roster holds the members discovered so far in discovery order, indexed by
// composite key and by normalized name.
type roster struct {
	list   []*domain.Member
	byKey  map[string]*domain.Member
	byName map[string][]*domain.Member
}

func newRoster() *roster {
	return &roster{
		byKey:  map[string]*domain.Member{},
		byName: map[string][]*domain.Member{},
	}
}

// memberKey is the composite identity of a member.
func memberKey(name, area string) string {
	return workbook.Normalize(name) + "_" + workbook.Normalize(area)
}

func (r *roster) add(key string, m *domain.Member) {
	r.list = append(r.list, m)
	r.byKey[key] = m
	n := workbook.Normalize(m.Name)
	r.byName[n] = append(r.byName[n], m)
}

// resolve finds the member for a receipt header: exact key first, then the only
// member with that name. Otherwise a zero-total member is created and registered,
// even when the name is ambiguous.
func (r *roster) resolve(name, area string) *domain.Member {
	key := memberKey(name, area)
	if m, ok := r.byKey[key]; ok {
		return m
	}
	if candidates := r.byName[workbook.Normalize(name)]; len(candidates) == 1 {
		return candidates[0]
	}
	m := &domain.Member{
		Name:      name,
		Area:      area,
		Items:     []domain.Item{},
		PaymentID: key + "_auto",
	}
	r.add(key, m)
	return m
}

// first returns the earliest member registered under the normalized name.
func (r *roster) first(name string) *domain.Member {
	candidates := r.byName[workbook.Normalize(name)]
	if len(candidates) == 0 {
		return nil
	}
	return candidates[0]
}
