package domain

// Member is a registered participant. Members are never deleted, only
// flagged banned.
type Member struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ProfileURL  string `json:"profile_url"`
	Description string `json:"description"`
	Handle      string `json:"handle"`

	Approved bool `json:"approved"`
	Banned   bool `json:"banned"`

	// JoinSeq is the registration order, used as the deterministic
	// tie-break wherever averages collide.
	JoinSeq uint64 `json:"join_seq"`

	TotalRespect uint64        `json:"total_respect"`
	History      RewardHistory `json:"history"`
}

// AverageRespect is the rolling average over the reward-history window.
// Banned members read as zero.
func (m *Member) AverageRespect() uint64 {
	if m.Banned {
		return 0
	}
	return m.History.Average()
}

// RewardHistory is a fixed-capacity ring buffer of the most recent reward
// amounts, with a running sum maintained in O(1) per push.
type RewardHistory struct {
	Amounts []uint64 `json:"amounts"`
	Head    int      `json:"head"`
	Count   int      `json:"count"`
	Sum     uint64   `json:"sum"`
	Rounds  uint64   `json:"rounds"`
}

// Push records a reward, evicting the oldest entry once capacity is reached.
// The window capacity can change between pushes; the buffer re-lays itself
// out to the newest capacity entries when it does.
func (h *RewardHistory) Push(amount uint64, capacity int) {
	if capacity < 1 {
		return
	}
	if h.Count > capacity || (h.Count < capacity && h.Head != 0) {
		h.rebuild(capacity)
	}
	h.Rounds++
	if h.Count < capacity {
		h.Amounts = append(h.Amounts, amount)
		h.Count++
	} else {
		h.Sum -= h.Amounts[h.Head]
		h.Amounts[h.Head] = amount
		h.Head = (h.Head + 1) % capacity
	}
	h.Sum += amount
}

// rebuild lays the retained rewards back out oldest first at index zero,
// keeping only the newest capacity entries, and recomputes the running sum.
func (h *RewardHistory) rebuild(capacity int) {
	ordered := make([]uint64, 0, h.Count)
	for i := 0; i < h.Count; i++ {
		ordered = append(ordered, h.Amounts[(h.Head+i)%len(h.Amounts)])
	}
	if len(ordered) > capacity {
		ordered = ordered[len(ordered)-capacity:]
	}
	h.Amounts = ordered
	h.Head = 0
	h.Count = len(ordered)
	h.Sum = 0
	for _, a := range ordered {
		h.Sum += a
	}
}

// Average is the running sum divided by the number of retained entries.
func (h *RewardHistory) Average() uint64 {
	if h.Count == 0 {
		return 0
	}
	return h.Sum / uint64(h.Count)
}

// Reset clears the history. Used when a member is banned.
func (h *RewardHistory) Reset() {
	h.Amounts = nil
	h.Head = 0
	h.Count = 0
	h.Sum = 0
}
