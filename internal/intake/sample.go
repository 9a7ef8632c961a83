package intake

// SampleResumeText stands in for the text of PDF and Word uploads.
const SampleResumeText = `AMBAR S
AI/ML Engineer
ai.ambarssit@gmail.com
+91-7022244341
India

PROFESSIONAL SUMMARY
Experienced AI/ML Engineer with 2+ years in artificial intelligence, machine learning, and web development. 
Proficient in Python, JavaScript, HTML, CSS, TensorFlow, and computer vision technologies.

EDUCATION
B.E. Artificial Intelligence & Machine Learning
Sri Siddhartha Institute of Technology (2022) - CGPA: 9.04/10

Pre-University Course (PUC)
Narayana PUC (2020) - 86%

SSLC (10th Board)
TVS School (2019) - 77%

TECHNICAL SKILLS
- Programming Languages: Python, JavaScript, HTML, CSS
- Machine Learning: TensorFlow, Keras, scikit-learn, OpenCV
- Libraries: NumPy, Pandas
- Web Technologies: HTML5, CSS3, JavaScript ES6+
- Tools: Git, VS Code

PROJECTS
1. Deadlift Posture Detection System
   - Computer vision project using OpenCV and ML algorithms
   - Real-time posture analysis and feedback system

2. Text-to-Image Generation
   - AI model for generating images from text descriptions
   - Used advanced deep learning techniques

3. Digit Recognition System
   - Machine learning model for handwritten digit recognition
   - Achieved 95% accuracy using neural networks

CERTIFICATIONS
- Artificial Intelligence Internship - Skilldunia
- AI & Prompt Engineering Internship - VaultOfCode
- Ethical Hacking Course - NPTEL

EXPERIENCE
AI/ML Developer (2022-Present)
- Developed machine learning models for various applications
- Worked on computer vision and natural language processing projects
- Collaborated with cross-functional teams on AI-driven solutions`
