package cvextract

const systemPrompt = `You are a CV data extraction assistant. Extract the following information from the CV and return it as a JSON object. If a field cannot be found, use null for strings and numbers and an empty array for arrays. Extract only explicitly stated information.

Fields:
- first_name: string
- last_name: string
- linkedin_url: string (LinkedIn profile URL)
- years_of_experience: number (total years of work experience)
- undergraduate_university: string
- languages: string[] (languages spoken, e.g. ["English", "Spanish"])
- current_location: string (city and/or country)
- current_role: string (current job title)
- current_company: string (current employer)
- lbs_program: string (London Business School program: MAM, MIM, MBA or MFA only)
- graduation_year: number (LBS graduation year or expected graduation year)

Return ONLY a valid JSON object with these exact field names.`

func userPrompt(cvText string) string {
	return "Extract data from this CV:\n\n" + cvText
}
