package tasks

import (
	"github.com/jrleja/BayesianComputing/redis"
)

const SurveysDB redis.DB = 0

// SurveyTask aggregates fit outcomes across one survey's artifacts, so a job
// configured to stop on failure can short-circuit remaining fits.
type SurveyTask struct {
	redis.BaseDocument
	FailedTasks []string            `json:"failed_tasks"`
	FailedFits  map[string][]string `json:"failed_fits"`
}

type SurveyTaskCached struct {
	redis.BaseDocument
	SurveyInfo  map[string]interface{} `json:"survey_info"`
	FailedTasks []string               `json:"failed_tasks"`
	JobID       string                 `json:"job_id"`
	WorkType    string                 `json:"work_type"`
}

type SurveyTasks struct {
	client redis.Client
}

func (tasks SurveyTasks) Get(redisKey string) (*SurveyTask, error) {
	var task SurveyTask
	err := tasks.client.GetDocument(redisKey, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

func (tasks SurveyTasks) GetCached(redisKey string) (*SurveyTaskCached, error) {
	var task SurveyTaskCached
	err := tasks.client.GetDocument(cachedPropertiesKey(redisKey), &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}

// Update rewrites both the survey document and its cached-properties copy
// under one lock, mirroring how upstream services read them.
func (tasks SurveyTasks) Update(redisKey string, updateFunc func(task *SurveyTask)) (err error) {
	releaseLock, err := tasks.client.Lock(redisKey)
	if err != nil {
		return err
	}
	defer func() {
		if releaseErr := releaseLock(); err == nil {
			err = releaseErr
		}
	}()

	var task SurveyTask
	if err = tasks.client.GetDocument(redisKey, &task); err != nil {
		return err
	}
	updateFunc(&task)
	if err = tasks.client.SaveDocument(redisKey, &task); err != nil {
		return err
	}

	var cached SurveyTaskCached
	cacheKey := cachedPropertiesKey(redisKey)
	if err = tasks.client.GetDocument(cacheKey, &cached); err != nil {
		return err
	}
	cached.FailedTasks = task.FailedTasks
	return tasks.client.SaveDocument(cacheKey, &cached)
}
