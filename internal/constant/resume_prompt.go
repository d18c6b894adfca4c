package constant

const (
	ResumeSystemPrompt = "You are a careful and responsible career planning assistant for students."

	// ResumeCleanPrompt takes the raw resume text.
	ResumeCleanPrompt = `Clean the resume below by removing the candidate's sensitive information.

Rules:
1. Remove phone numbers, email addresses, messaging handles, street addresses and social account ids.
2. Keep only the family name. Replace the given name with "*".
3. Keep the age.
4. Return the complete cleaned resume text and nothing else. Do not add a preface or a closing remark, and do not change any remaining content.

Resume:
%s`

	// ResumeKeywordPrompt takes the role name, role description, organization info and cleaned resume.
	ResumeKeywordPrompt = `Extract short key statements from the text below for a knowledge lookup.

Directions: organization type, role type, industry, research experience, competition experience, leadership and social practice, industry practice.

Rules:
1. Each statement is short and carries one point. A direction may have several statements.
2. Separate statements with <#>, for example: aa<#>bb<#>cc
3. Return the statements only.

Role name: %s
Role description: %s
Organization and other information: %s
Resume: %s`

	// ResumeRoleAnalysisPrompt takes the role name and role description.
	ResumeRoleAnalysisPrompt = `List the core skills, tools and experience a strong candidate for the role below is expected to show. Answer in at most ten concise bullet points.

Role name: %s
Role description: %s`

	// ResumeEvaluationPrompt takes the cleaned resume, role, key statements,
	// role analysis, organization info and the user's note.
	ResumeEvaluationPrompt = `Score and optimize the resume below for the target role.

Answer with:
1. An overall score from 0 to 100 and a one-line verdict.
2. Scores with short reasons for: relevance to the role, skills, experience, achievements and presentation.
3. Concrete, prioritized suggestions, quoting the resume lines to change and proposing replacements.
4. Missing keywords the role expects.

Follow the user's note when it does not conflict with the rules above. Do not invent experience the candidate does not have.

##Resume: %s
##Target role: %s
##Key statements: %s
##Role expectations: %s
##Organization and other information: %s
##User's note: %s`

	// ResumeChatPrompt takes the chat history, the evaluation record and the user's message.
	ResumeChatPrompt = `Answer the user's message using the chat history and the user's resume evaluation record (role information, resume content, scores and suggestions). Stay strictly consistent with the scores in the record when it exists.

If there is no prior information, do not address the user by name or invent facts. If the message is unrelated to resume optimization, gently explain that you are a resume scoring and optimization assistant, then still answer what the user said.

##Chat history: %s
##Resume evaluation record: %s
##User's message: %s`

	// NoneProvided fills empty prompt fields.
	NoneProvided = "None"
)

// ResumeKeywordDirections is used when keyword extraction fails.
var ResumeKeywordDirections = []string{
	"organization type",
	"role type",
	"industry",
	"research experience",
	"competition experience",
	"leadership and social practice",
	"industry practice",
}
