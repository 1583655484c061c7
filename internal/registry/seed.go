package registry

// builtinSeed is the dictionary a fresh Registry starts with, before any
// database load or learned token. Small and representative rather than
// exhaustive; corpus ingestion and LearnToken are expected to grow it.
var builtinSeed = map[Category][]string{
	FirstName: {
		"rahul", "amit", "suresh", "anjali", "priya", "vikram", "deepak",
		"sunita", "ravi", "neha", "arjun", "kavita", "manoj", "pooja",
		"sanjay", "meena", "ajay", "shalini", "rajesh", "geeta",
	},
	LastName: {
		"sharma", "verma", "gupta", "singh", "kapoor", "patel", "reddy",
		"nair", "iyer", "rao", "mehta", "joshi", "chopra", "malhotra",
		"bhat", "pillai", "das", "banerjee", "mukherjee", "desai",
	},
	MiddleName: {
		"kumar", "kumari", "lal", "devi", "prasad", "bai",
	},
	Prefix: {
		"mr", "mrs", "ms", "dr", "er", "miss", "shri", "smt", "prof",
	},
	Relationship: {
		"papa", "mummy", "mom", "dad", "bhaiya", "didi", "uncle", "aunty",
		"aunt", "brother", "sister", "husband", "wife", "bhai", "cousin",
		"chacha", "mama", "mami", "nana", "nani", "dada", "dadi",
	},
	Descriptor: {
		"office", "home", "work", "new", "old", "personal", "friend",
		"colleague", "neighbour", "neighbor", "boss", "client", "customer",
		"driver", "maid", "plumber", "electrician", "doctor", "teacher",
	},
}
