package learner

// Hyperparameters for tabular Q-learning

const DefaultAlpha = 0.5 // Learning rate
const DefaultGamma = 0.9 // Discount factor

// Exploration schedule: epsilon decays geometrically toward a floor
const DefaultEpsilonStart = 1.0
const DefaultEpsilonMin = 0.01
const DefaultEpsilonDecay = 0.999
