package seed

import "academy/models"

var practiceExam = models.Exam{
	PassingScore: 70,
	TimeLimit:    60,
	Instructions: "Read each question carefully and select the best answer.",
	Questions: []models.Question{
		{
			Question:      "What is the primary duty of a security officer?",
			Options:       []string{"Arrest suspects", "Observe and report", "Issue citations", "Investigate crimes"},
			CorrectAnswer: 1,
			Points:        1,
		},
		{
			Question:      "When writing an incident report, an officer should record:",
			Options:       []string{"Opinions about the people involved", "Only what a supervisor asks for", "Facts: who, what, when, where and how", "A summary written days later"},
			CorrectAnswer: 2,
			Points:        1,
		},
		{
			Question:      "Professional appearance for a security officer includes:",
			Options:       []string{"Proper hygiene", "Good posture", "A clean, complete uniform", "All of the above"},
			CorrectAnswer: 3,
			Points:        1,
		},
		{
			Question:      "Force used by a security officer must be:",
			Options:       []string{"Reasonable and necessary", "Equal to any threat imagined", "Used to punish", "Approved by the client afterwards"},
			CorrectAnswer: 0,
			Points:        1,
		},
		{
			Question:      "During a fire alarm, an officer should first:",
			Options:       []string{"Finish the current patrol", "Follow the site's emergency plan", "Wait for the fire department to call", "Lock all exits"},
			CorrectAnswer: 1,
			Points:        1,
		},
		{
			Question:      "Workplace ethics are:",
			Options:       []string{"Rules your parents gave you", "Values and standards followed in the workplace", "Being good at your profession", "Whatever the client prefers"},
			CorrectAnswer: 1,
			Points:        1,
		},
		{
			Question:      "Notes taken in an officer's field notebook should be:",
			Options:       []string{"Written in pencil so they can be corrected", "Clear, accurate and made at the time", "Kept only until the shift ends", "Shared on social media"},
			CorrectAnswer: 1,
			Points:        1,
		},
		{
			Question:      "Critical incidents include:",
			Options:       []string{"Natural disasters", "Robberies and assaults", "Severe accidents", "All of the above"},
			CorrectAnswer: 3,
			Points:        1,
		},
		{
			Question:      "Good customer service from an officer means:",
			Options:       []string{"Ignoring visitors unless addressed", "Being courteous and helpful", "Answering only security questions", "Arguing with complaints"},
			CorrectAnswer: 1,
			Points:        1,
		},
		{
			Question:      "A non-commissioned security officer may carry a firearm on duty.",
			Options:       []string{"True", "False"},
			CorrectAnswer: 1,
			Points:        1,
		},
	},
}
