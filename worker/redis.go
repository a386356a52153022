package worker

import (
	"github.com/jrleja/BayesianComputing/tasks"
	"fmt"
)

type redisTransactions interface {
	getFitTask(redisKey string) (*tasks.FitTask, error)
	getJobTask(task *Task) (*tasks.JobTask, error)
	getSurveyTask(task *Task) (*tasks.SurveyTaskCached, error)
	onTaskStarted(task *Task) error
	onTaskCancelled(task *Task, errorMessages ...string) error
	onTaskExceededRetries(task *Task, maxRetries int) error
	onTaskFailedWithError(task *Task, err error) error
	onTaskComplete(task *Task) error
	close()
}

type redisClientWrapper struct {
	tasksClient *tasks.Client
}

func (wrapper *redisClientWrapper) close() {
	wrapper.tasksClient.Close()
}

func (wrapper *redisClientWrapper) onTaskStarted(task *Task) error {
	err := wrapper.tasksClient.Fits.Update(task.redisKey, func(task *tasks.FitTask) {
		task.TaskStatuses.HBM.Status = tasks.TaskStatusStarted
		task.TaskStatuses.HBM.Attempts += 1
		task.TaskStatuses.HBM.StartedAt = getFormattedNow()
		task.TaskStatuses.HBM.CompletedAt = nil
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskCancelled(task *Task, errorMessages ...string) error {
	err := wrapper.tasksClient.Fits.Update(task.redisKey, func(fitTask *tasks.FitTask) {
		fitTask.TaskStatuses.HBM.Status = tasks.TaskStatusCanceled
		fitTask.TaskStatuses.HBM.StartedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.CompletedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.Attempts += 1
		fitTask.TaskStatuses.HBM.ErrorMessages = append(
			fitTask.TaskStatuses.HBM.ErrorMessages,
			errorMessages...,
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskExceededRetries(task *Task, maxRetries int) error {
	err := wrapper.tasksClient.Surveys.Update(task.fitTask.SurveyID, func(surveyTask *tasks.SurveyTask) {
		surveyTask.FailedTasks = append(surveyTask.FailedTasks, "hbm")
		if surveyTask.FailedFits == nil {
			surveyTask.FailedFits = map[string][]string{}
		}
		surveyTask.FailedFits[task.redisKey] = append(surveyTask.FailedFits[task.redisKey], "hbm")
	})
	if err != nil {
		return err
	}
	err = wrapper.tasksClient.Fits.Update(task.redisKey, func(fitTask *tasks.FitTask) {
		fitTask.TaskStatuses.HBM.Status = tasks.TaskStatusCompletedFailure
		fitTask.TaskStatuses.HBM.StartedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.CompletedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.Attempts += 1
		fitTask.TaskStatuses.HBM.ErrorMessages = append(
			fitTask.TaskStatuses.HBM.ErrorMessages,
			fmt.Sprintf(
				"Task has exceeded retries. (Attempts: %d, max retries: %d )",
				fitTask.TaskStatuses.HBM.Attempts,
				maxRetries,
			),
		)
	})
	return err
}

func (wrapper *redisClientWrapper) onTaskFailedWithError(task *Task, err error) error {
	return wrapper.tasksClient.Fits.Update(task.redisKey, func(fitTask *tasks.FitTask) {
		fitTask.TaskStatuses.HBM.Status = tasks.TaskStatusFailed
		fitTask.TaskStatuses.HBM.CompletedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.ErrorMessages = append(fitTask.TaskStatuses.HBM.ErrorMessages, err.Error())
	})
}

func (wrapper *redisClientWrapper) onTaskComplete(task *Task) error {
	return wrapper.tasksClient.Fits.Update(task.redisKey, func(fitTask *tasks.FitTask) {
		if !fitTask.TaskStatuses.HBM.Status.Complete() {
			fitTask.TaskStatuses.HBM.Status = tasks.TaskStatusCompletedSuccess
		}
		fitTask.TaskStatuses.HBM.CompletedAt = getFormattedNow()
		fitTask.TaskStatuses.HBM.ResultsFileKey = getResultsFileKey(task)
	})
}

func (wrapper *redisClientWrapper) getFitTask(redisKey string) (*tasks.FitTask, error) {
	return wrapper.tasksClient.Fits.Get(redisKey)
}

func (wrapper *redisClientWrapper) getJobTask(task *Task) (*tasks.JobTask, error) {
	return wrapper.tasksClient.Jobs.GetCached(task.fitTask.JobID)
}

func (wrapper *redisClientWrapper) getSurveyTask(task *Task) (*tasks.SurveyTaskCached, error) {
	return wrapper.tasksClient.Surveys.GetCached(task.fitTask.SurveyID)
}
