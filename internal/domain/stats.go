package domain

// ProjectStats агрегаты по проектам.
type ProjectStats struct {
	TotalProjects        int64   `json:"totalProjects"`
	ActiveProjects       int64   `json:"activeProjects"`
	CompletedProjects    int64   `json:"completedProjects"`
	CriticalProjects     int64   `json:"criticalProjects"`
	OverdueProjects      int64   `json:"overdueProjects"`
	RecentProjectUpdates int64   `json:"recentProjectUpdates"`
	AverageProgress      float64 `json:"averageProgress"`
}

// SkillCount количество сотрудников с навыком.
type SkillCount struct {
	Name  string `json:"name"`
	Count int64  `json:"count"`
}

// CollaboratorStats агрегаты по сотрудникам.
type CollaboratorStats struct {
	OnMission int64        `json:"onMission"`
	Free      int64        `json:"free"`
	OnLeave   int64        `json:"onLeave"`
	Total     int64        `json:"total"`
	Active    int64        `json:"active"`
	TopSkills []SkillCount `json:"topSkills"`
	// LeastUsedSkills редкие навыки, от самого редкого.
	LeastUsedSkills []SkillCount `json:"leastUsedSkills"`
	// Skills число активных сотрудников по каждому навыку.
	Skills map[string]int64 `json:"skills"`
}

// RemovalStats сводка для экрана снятия сотрудников с проектов.
type RemovalStats struct {
	ActiveAssignments         int64 `json:"activeAssignments"`
	EndingSoon                int64 `json:"endingSoon"`
	CollaboratorsToBeReleased int64 `json:"collaboratorsToBeReleased"`
	NewAssignments            int64 `json:"newAssignments"`
}

// Dashboard сводные показатели главной страницы.
type Dashboard struct {
	TotalActiveProjects    int64   `json:"totalActiveProjects"`
	TotalCollaborators     int64   `json:"totalCollaborators"`
	ActiveAssignments      int64   `json:"activeAssignments"`
	OverallProjectProgress float64 `json:"overallProjectProgress"`
	RecentProjectUpdates   int64   `json:"recentProjectUpdates"`
	OverdueProjects        int64   `json:"overdueProjects"`
	NewAssignments         int64   `json:"newAssignments"`
}
