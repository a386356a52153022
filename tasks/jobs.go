package tasks

import (
	"github.com/jrleja/BayesianComputing/redis"
)

const JobsDB redis.DB = 1

type JobTask struct {
	redis.BaseDocument
	UserCanceled      bool `json:"user_canceled"`
	StopFitsOnFailure bool `json:"stop_fits_on_failure"`
}

type JobTasks struct {
	client redis.Client
}

func (tasks JobTasks) GetCached(redisKey string) (*JobTask, error) {
	var task JobTask
	key := cachedPropertiesKey(redisKey)
	err := tasks.client.GetDocument(key, &task)
	if err != nil {
		return nil, err
	}
	return &task, nil
}
