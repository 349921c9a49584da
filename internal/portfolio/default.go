package portfolio

// Default returns the built-in dataset. Each call returns a fresh copy.
func Default() *Data {
	return &Data{
		Personal: Personal{
			Name:    "Vansh Oberoi",
			Title:   "AI Engineer",
			Summary: "Passionate AI Engineer with expertise in **Python**, **Machine Learning**, and **Web Technologies**.",
			Contact: Contact{
				Address: "Kapurthala, Punjab",
				Email:   "learnsolo462@gmail.com",
				Socials: []SocialLink{
					{Platform: "LinkedIn", URL: "https://www.linkedin.com/in/vansh-oberoi-62baa6178/", Icon: "linkedin"},
					{Platform: "GitHub", URL: "https://github.com/Vansh462", Icon: "github"},
					{Platform: "Twitter", URL: "https://twitter.com/vansh462", Icon: "twitter"},
				},
			},
		},
		Pages: []Page{
			{ID: "home", Title: "Home", Description: "Main page with introduction and overview", Route: "/",
				Keywords: []string{"home", "main", "landing", "intro", "overview"}},
			{ID: "about", Title: "About", Description: "Learn about my background, skills, and interests", Route: "/about",
				Keywords: []string{"about", "bio", "background", "education", "skills"}},
			{ID: "experience", Title: "Experience", Description: "My professional experience and work history", Route: "/experience",
				Keywords: []string{"experience", "work", "job", "career", "professional"}},
			{ID: "projects", Title: "Projects", Description: "Portfolio of my projects and work", Route: "/projects",
				Keywords: []string{"projects", "portfolio", "work", "showcase"}},
			{ID: "contact", Title: "Contact", Description: "Get in touch with me", Route: "/contact",
				Keywords: []string{"contact", "email", "message", "get in touch"}},
			{ID: "privacy", Title: "Privacy Policy", Description: "How analytics and contact data are handled", Route: "/privacy",
				Keywords: []string{"privacy", "cookies", "analytics", "data"}, Hidden: true},
		},
		Skills: []Skill{
			{Name: "Python", Level: 95, Icon: "python", Category: "Programming"},
			{Name: "Machine Learning", Level: 90, Icon: "brain", Category: "AI"},
			{Name: "Large Language Models", Level: 95, Icon: "brain", Category: "AI"},
			{Name: "AI Agents", Level: 88, Icon: "brain", Category: "AI"},
			{Name: "C/C++", Level: 85, Icon: "code", Category: "Programming"},
			{Name: "HTML/CSS", Level: 80, Icon: "html5", Category: "Web"},
			{Name: "SQL", Level: 85, Icon: "database", Category: "Data"},
			{Name: "Tableau", Level: 85, Icon: "chart", Category: "Data"},
		},
		Technologies: []Technology{
			{Name: "Scikit-learn"}, {Name: "TensorFlow"}, {Name: "OpenAI API"}, {Name: "Claude API"},
			{Name: "Beautiful Soup"}, {Name: "OpenCV"}, {Name: "Django"}, {Name: "AWS Sagemaker"},
			{Name: "Git"}, {Name: "Linux"}, {Name: "Docker"}, {Name: "Selenium"},
		},
		Experience: []Experience{
			{
				Title:     "AI Engineer",
				Company:   "EaseMyMed",
				StartDate: "Dec 2024",
				EndDate:   "April 2025",
				Description: []string{
					"Developed multiple APIs including Image-to-Text and Image-to-Image solutions",
					"Worked with Large Language Models like OpenAI GPT and Gemini 2.0",
					"Built and deployed AI Agents",
					"Fine-tuned models such as DeepSeek for specialized applications",
					"Utilized AWS Sagemaker to develop and deploy machine learning models",
				},
				Technologies: []Technology{
					{Name: "GenAI"}, {Name: "AI Agents"}, {Name: "Django"},
					{Name: "AWS Sagemaker"}, {Name: "Docker"}, {Name: "Python"},
				},
			},
		},
		Projects: []Project{
			{
				Title:       "Bombay House Price Prediction",
				Description: "House price prediction model for Bombay with a Streamlit front end, deployed on AWS behind Nginx. Predicts from BHK, square footage and location across roughly 25 locations.",
				Technologies: []Technology{
					{Name: "Python"}, {Name: "ML"}, {Name: "Streamlit"}, {Name: "AWS Cloud"}, {Name: "NginX"},
				},
				GitHub:   "https://github.com/Vansh462",
				Featured: true,
			},
			{
				Title:       "Official Site Link Scraping",
				Description: "Backend that finds a bank's official site from its name alone. Compared APIs and Selenium before settling on the Google library, and used multiprocessing for throughput.",
				Technologies: []Technology{
					{Name: "Python"}, {Name: "Selenium"}, {Name: "Beautiful Soup"}, {Name: "Multiprocessing"},
				},
				Featured: true,
			},
		},
		Education: []Education{
			{
				Degree:      "Bachelor of Technology in Computer Science & Engineering",
				Institution: "Guru Nanak Dev University",
				Location:    "Amritsar, Punjab",
				StartDate:   "August 2022",
				EndDate:     "June 2026",
			},
		},
		Leadership: []Leadership{
			{
				Title:        "Design Team Head",
				Organization: "ECell",
				Date:         "Spring 2022 - 2023",
				Description:  "Led the four-person design team of GNDU E-Cell, working with the tech and marketing teams.",
			},
			{
				Title:        "Backend Team Learner",
				Organization: "ARAMBH startup",
				Date:         "Aug 2024 - Oct 2024",
				Description:  "Applied Python on backend projects alongside the ECE department team.",
			},
		},
		Keywords: []KeywordGroup{
			{Page: "projects", Terms: []string{"github", "kaggle", "demo"}},
			{Page: "contact", Terms: []string{"hire", "linkedin", "resume"}},
		},
	}
}
