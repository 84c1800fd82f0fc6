package domain

// Technician is a member of the support pool. The engine only reads it; workload
// bookkeeping belongs to the technician store.
type Technician struct {
	ID              string   `json:"technician_id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	Role            string   `json:"role"`
	Skills          []string `json:"skills"`
	Specializations []string `json:"specializations"`
	CurrentWorkload int      `json:"current_workload"`
}
