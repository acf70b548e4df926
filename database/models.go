package database

type User struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
}

type Journey struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"account_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Completed   bool     `json:"completed"`
	Columns     []Column `json:"columns"`
}

// Column is either a journey column (JourneyID set) or a mission column
// (MissionID set). Both families share one table layout.
type Column struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	JourneyID string `json:"journey_id,omitempty"`
	MissionID string `json:"mission_id,omitempty"`
	Name      string `json:"name"`
	Color     string `json:"color"`
	Position  int    `json:"position"`

	Missions []Mission `json:"missions,omitempty"`
	Tasks    []Task    `json:"tasks,omitempty"`
}

// ParentID returns the id of the journey or mission owning the column.
func (c Column) ParentID() string {
	if c.MissionID != "" {
		return c.MissionID
	}
	return c.JourneyID
}

type Mission struct {
	ID          string   `json:"id"`
	AccountID   string   `json:"account_id"`
	ColumnID    string   `json:"column_id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Position    int      `json:"position"`
	Completed   bool     `json:"completed"`
	Users       []string `json:"users"`
	Columns     []Column `json:"columns,omitempty"`
}

type Task struct {
	ID           string    `json:"id"`
	AccountID    string    `json:"account_id"`
	ColumnID     string    `json:"column_id"`
	UserID       string    `json:"user_id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	Position     int       `json:"position"`
	Points       int       `json:"points"`
	Completed    bool      `json:"completed"`
	RelatedTasks []string  `json:"related_tasks"`
	Subtasks     []Subtask `json:"subtasks"`
}

type Subtask struct {
	ID        string `json:"id"`
	AccountID string `json:"account_id"`
	TaskID    string `json:"task_id"`
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
}
