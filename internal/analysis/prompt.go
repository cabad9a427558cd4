package analysis

import "fmt"

// SystemMessage is the persona sent with every completion request.
const SystemMessage = "You are an expert career coach and technical recruiter with deep experience in resume screening and applicant tracking systems. You give honest, specific, and actionable feedback."

const promptTemplate = `Analyze the following resume against the job description and provide a detailed critique.

RESUME:
%s

JOB DESCRIPTION:
%s

Structure your response using exactly these five sections:

## 1. MATCH SCORE
Give an overall match score from 0 to 100 in the form "Score: NN/100", followed by two or three sentences explaining the score.

## 2. KEY STRENGTHS
List 3-5 specific qualifications, skills, or experiences from the resume that align well with the job requirements. Reference the resume content directly.

## 3. GAPS & MISSING SKILLS
List the required or preferred skills, qualifications, or experiences from the job description that are missing or weakly represented in the resume.

## 4. ACTIONABLE RECOMMENDATIONS
Give 3-5 concrete changes the candidate should make to the resume to improve the match. Each recommendation must say what to change and why.

## 5. KEYWORDS TO ADD
List important keywords and phrases from the job description that should be added to the resume to pass applicant tracking systems, as a comma-separated list.

Be specific and base every point on the resume and job description above. Do not invent experience the candidate does not have.`

// ComposePrompt fills the analysis template. Inputs must already be truncated.
func ComposePrompt(resumeText, jobDescription string) string {
	return fmt.Sprintf(promptTemplate, resumeText, jobDescription)
}
