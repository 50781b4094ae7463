package api

// InitializeRequest is the body for POST /api/initialize.
type InitializeRequest struct {
	Puzzle         [][]int `json:"puzzle"`
	CheckpointPath string  `json:"checkpoint_path"`
}

// InitializeResponse is the backend's reply to an initialize call.
type InitializeResponse struct {
	SessionID   string  `json:"session_id"`
	InitialGrid [][]int `json:"initial_grid,omitempty"`
	Status      string  `json:"status,omitempty"`
}

// StepResponse is one solver step result from POST /api/step/{id}.
// Metrics is optional diagnostic output from the model; clients must
// tolerate its absence.
type StepResponse struct {
	CurrentGrid [][]int            `json:"current_grid"`
	Step        int                `json:"step"`
	Finished    bool               `json:"finished"`
	Metrics     map[string]float64 `json:"metrics,omitempty"`
}

// SolveCompleteResponse is the reply to POST /api/solve_complete/{id}:
// every step the solver took, in order.
type SolveCompleteResponse struct {
	Steps []StepResponse `json:"steps"`
}

// HealthResponse is the reply to GET /api/health.
type HealthResponse struct {
	Status      string `json:"status"`
	ModelLoaded bool   `json:"model_loaded"`
}

// Model describes one checkpoint available on the backend.
type Model struct {
	Game      string  `json:"game"`
	Filename  string  `json:"filename"`
	Path      string  `json:"path"`
	SizeMB    float64 `json:"size_mb"`
	HasConfig bool    `json:"has_config"`
	Format    string  `json:"format,omitempty"`
}

// ModelsResponse is the reply to GET /api/models.
type ModelsResponse struct {
	Models []Model `json:"models"`
	Count  int     `json:"count"`
}

// TestDataFile describes one evaluation dataset on the backend.
type TestDataFile struct {
	Path   string  `json:"path"`
	Name   string  `json:"name"`
	SizeMB float64 `json:"size_mb"`
	Shape  string  `json:"shape,omitempty"`
}

// TestDataResponse is the reply to GET /api/test_data_files.
type TestDataResponse struct {
	Files []TestDataFile `json:"files"`
}

// GeneratePuzzleRequest is the body for POST /api/generate_puzzle.
// TestDataPath is only meaningful when Source selects a dataset.
type GeneratePuzzleRequest struct {
	Source       string `json:"source"`
	TestDataPath string `json:"test_data_path,omitempty"`
}

// GeneratePuzzleResponse is the backend's reply to a puzzle request.
type GeneratePuzzleResponse struct {
	Puzzle [][]int `json:"puzzle"`
	Source string  `json:"source"`
}
