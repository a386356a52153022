package tasks

import (
	"github.com/jrleja/BayesianComputing/redis"
	"fmt"
)

type Client struct {
	Surveys SurveyTasks
	Fits    FitTasks
	Jobs    JobTasks
}

// NewClient is a preferred way for working with task documents
func NewClient() (Client, error) {
	surveyRedisClient, err := redis.NewClient(SurveysDB)
	if err != nil {
		return Client{}, err
	}
	jobsRedisClient, err := redis.NewClient(JobsDB)
	if err != nil {
		return Client{}, err
	}
	fitsRedisClient, err := redis.NewClient(FitsDB)
	if err != nil {
		return Client{}, err
	}
	return Client{
		Surveys: SurveyTasks{client: surveyRedisClient},
		Jobs:    JobTasks{client: jobsRedisClient},
		Fits:    FitTasks{client: fitsRedisClient},
	}, nil
}

func (client *Client) Close() {
	_ = client.Fits.client.Close()
	_ = client.Surveys.client.Close()
	_ = client.Jobs.client.Close()
}

func cachedPropertiesKey(redisKey string) string {
	return fmt.Sprintf("%s-cached-properties", redisKey)
}
