package worker

import (
	"github.com/jrleja/BayesianComputing/s3client"
)

type s3Transactions interface {
	getObservationData(task *Task) ([]byte, error)
	saveResultsFile(task *Task, results string) error
	close()
}

type s3ClientWrapper struct {
	s3Client *s3client.Client
}

func (wrapper *s3ClientWrapper) close() {
	wrapper.s3Client.Close()
}

func (wrapper *s3ClientWrapper) getObservationData(task *Task) ([]byte, error) {
	return wrapper.s3Client.Download(task.fitTask.PDFsFileKey)
}

func (wrapper *s3ClientWrapper) saveResultsFile(task *Task, results string) error {
	_, err := wrapper.s3Client.Upload(results, getResultsFileKey(task))
	return err
}
