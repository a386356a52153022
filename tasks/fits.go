package tasks

import (
	"github.com/jrleja/BayesianComputing/redis"
)

const FitsDB redis.DB = 2

type TaskStatus string

const (
	TaskStatusProcessing       TaskStatus = "processing"
	TaskStatusSubmitted        TaskStatus = "submitted"
	TaskStatusStarted          TaskStatus = "started"
	TaskStatusFailed           TaskStatus = "failed"
	TaskStatusCompletedSuccess TaskStatus = "completed - success"
	TaskStatusCompletedFailure TaskStatus = "completed - failure"
	TaskStatusCanceled         TaskStatus = "canceled"
)

func (s TaskStatus) Complete() bool {
	return s == TaskStatusCompletedSuccess || s == TaskStatusCompletedFailure || s == TaskStatusCanceled
}

func (s TaskStatus) Submitted() bool {
	return s == TaskStatusSubmitted || s == TaskStatusStarted || s == TaskStatusProcessing
}

// FitTask tracks one population-fit work unit: a single observation artifact
// belonging to a survey, processed by the hbm worker.
type FitTask struct {
	redis.BaseDocument
	SurveyID     string          `json:"survey_id"`
	JobID        string          `json:"job_id"`
	PDFsFileKey  string          `json:"pdfs_file_key"`
	TaskStatuses FitTaskStatuses `json:"task_statuses"`
}

type FitTaskStatuses struct {
	HBM FitTaskInfo `json:"hbm"`
}

type FitTaskInfo struct {
	ResultsFileKey string     `json:"results_file_key"`
	StartedAt      *string    `json:"started_at"`
	CompletedAt    *string    `json:"completed_at"`
	Attempts       int        `json:"attempts"`
	Status         TaskStatus `json:"status"`
	Dependencies   []string   `json:"dependencies"`
	ErrorMessages  []string   `json:"error_messages"`
}

type FitTasks struct {
	client redis.Client
}

func (tasks FitTasks) Get(redisKey string) (*FitTask, error) {
	var task FitTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks FitTasks) Update(redisKey string, updateFunc func(task *FitTask)) error {
	var task FitTask
	return tasks.client.UpdateDocument(redisKey, &task, func() {
		updateFunc(&task)
	})
}
