package learner

import "github.com/openclaip/claip/internal/domain"

// KnowledgeStore is the append-only claim log with a by-subject index.
// Claims are immutable once added and never deleted.
type KnowledgeStore struct {
	claims    []domain.Claim
	bySubject map[string][]int
}

func NewKnowledgeStore() *KnowledgeStore {
	return &KnowledgeStore{bySubject: make(map[string][]int)}
}

// Add appends the claim and returns its index.
func (k *KnowledgeStore) Add(c domain.Claim) int {
	idx := len(k.claims)
	k.claims = append(k.claims, c)
	k.bySubject[c.Subject] = append(k.bySubject[c.Subject], idx)
	return idx
}

// SubjectItems returns all claims for a subject in insertion order. An
// unknown subject yields an empty slice, not an error.
func (k *KnowledgeStore) SubjectItems(subject string) []domain.Claim {
	idxs := k.bySubject[subject]
	items := make([]domain.Claim, 0, len(idxs))
	for _, i := range idxs {
		items = append(items, k.claims[i])
	}
	return items
}

func (k *KnowledgeStore) Len() int {
	return len(k.claims)
}

// Claims returns a copy of the full log, oldest first.
func (k *KnowledgeStore) Claims() []domain.Claim {
	out := make([]domain.Claim, len(k.claims))
	copy(out, k.claims)
	return out
}
