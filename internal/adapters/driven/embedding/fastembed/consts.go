package fastembed

// DefaultModel is all-MiniLM-L6-v2, the 384-dimension sentence transformer.
const DefaultModel = "fast-all-MiniLM-L6-v2"

// Dimensions is the vector size of every supported model.
const Dimensions = 384
