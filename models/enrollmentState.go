package models

// EnrollmentState is one of Pending, AwaitingExam, Failed, Passed or Certified.
type EnrollmentState interface {
	Stage() Stage
	isEnrollmentState()
}

// Pending enrollments wait for payment.
type Pending struct{}

// AwaitingExam enrollments are paid (or free) and have no exam result yet.
type AwaitingExam struct{}

type Failed struct {
	Attempts  int
	LastScore float64
}

type Passed struct {
	Score float64
}

// Certified is terminal; later exam attempts never leave it.
type Certified struct {
	Score         float64
	CertificateID uint
}

func (Pending) Stage() Stage      { return StagePending }
func (AwaitingExam) Stage() Stage { return StageAwaitingExam }
func (Failed) Stage() Stage       { return StageFailed }
func (Passed) Stage() Stage       { return StagePassed }
func (Certified) Stage() Stage    { return StageCertified }

func (Pending) isEnrollmentState()      {}
func (AwaitingExam) isEnrollmentState() {}
func (Failed) isEnrollmentState()       {}
func (Passed) isEnrollmentState()       {}
func (Certified) isEnrollmentState()    {}

// AfterExam returns the state an enrollment moves to once an attempt is
// scored. attempts is the count including this attempt.
func AfterExam(current EnrollmentState, passed bool, score float64, attempts int) EnrollmentState {
	if c, ok := current.(Certified); ok {
		return c
	}
	if passed {
		return Passed{Score: score}
	}
	return Failed{Attempts: attempts, LastScore: score}
}

// CanIssueCertificate reports whether a certificate may be generated from s.
func CanIssueCertificate(s EnrollmentState) bool {
	switch s.(type) {
	case Passed, Certified:
		return true
	}
	return false
}
