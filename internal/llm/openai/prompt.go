package openai

const systemPrompt = `You are a resume parser. Extract the following from the resume:
- full name
- email address
- technical skills (as an array)
- education history (as an array of objects with 'year', 'degree', 'university')
- job readiness (array of { role, percent } where percent = readiness % for the role)
- skill gap (array of { skill, missing } indicating how much a skill is lacking for job market relevance)
- recommended jobs (array of { title, company, skillsMatch })
Respond with valid JSON only. Do NOT include extra commentary.`

const exampleJSON = `{
  "name": "John Doe",
  "email": "john@example.com",
  "skills": ["React", "Node.js"],
  "education": [
    {"year": "2021-2023", "degree": "M.Sc. Computer Science", "university": "ABC University"},
    {"year": "2017-2021", "degree": "B.E. Computer Engineering", "university": "XYZ Institute of Technology"}
  ],
  "readiness": [
    {"role": "Frontend Developer", "percent": 85},
    {"role": "AI Engineer", "percent": 60}
  ],
  "skillGap": [
    {"skill": "TypeScript", "missing": 2},
    {"skill": "Docker", "missing": 3}
  ],
  "recommendedJobs": [
    {"title": "Frontend Developer", "company": "TechNova Inc.", "skillsMatch": 87},
    {"title": "AI Engineer", "company": "SmartML Labs", "skillsMatch": 72}
  ]
}`

// buildMessages creates the chat messages for one analysis request.
func buildMessages(resumeText string) []chatMessage {
	return []chatMessage{
		{Role: "system", Content: systemPrompt},
		{Role: "user", Content: "Here is the resume:\n\n" + resumeText + "\n\nReturn JSON shaped like:\n" + exampleJSON},
	}
}
