package skills

// vocabulary is the fixed set of skill keywords the extractor recognizes.
// Entries are lowercase; matching is case-insensitive against the text.
var vocabulary = []string{
	// Programming languages
	"javascript", "typescript", "python", "java", "c#", "c++", "go", "rust",
	"ruby", "php", "swift", "kotlin", "scala", "r", "matlab", "dart",
	// Frontend
	"react", "angular", "vue", "svelte", "next.js", "nuxt", "html", "css",
	"sass", "tailwind", "bootstrap", "webpack", "vite",
	// Backend
	"node.js", "express", "fastify", "django", "flask", "spring", "rails",
	".net", "laravel", "nestjs",
	// Mobile
	"react native", "flutter", "ios", "android", "swiftui",
	// Data
	"sql", "postgresql", "mysql", "mongodb", "redis", "elasticsearch",
	"dynamodb", "cassandra", "neo4j",
	// Cloud & DevOps
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "ansible",
	"jenkins", "github actions", "ci/cd", "linux",
	// AI/ML
	"machine learning", "deep learning", "nlp", "computer vision",
	"tensorflow", "pytorch", "pandas", "numpy", "scikit-learn",
	// Design
	"figma", "sketch", "adobe xd", "ui/ux", "design system",
	// Management & methods
	"agile", "scrum", "kanban", "jira", "product management",
	"project management", "leadership",
	// General
	"api", "rest", "graphql", "grpc", "microservices", "system design",
	"architecture", "testing", "tdd", "git",
}
