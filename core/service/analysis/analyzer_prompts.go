package analysis

// Prompt templates for the model-backed path. Pure data; slots are filled
// with fmt-style %s substitution by renderTaskPrompt.
//
// The reply contract is a single JSON object with exactly the six result
// fields, which is what ParseAnalysisResponse expects.

// analysisSystemPrompt is sent as the system message on every provider call.
const analysisSystemPrompt = "You are a helpful task management assistant. Respond with valid JSON only."

// taskAnalysisTemplate slots, in order: title, description, priority,
// deadline, context block, user preferences JSON, workload JSON.
const taskAnalysisTemplate = `You are a smart task management assistant. Analyze the following task and provide structured recommendations.

TASK TO ANALYZE:
Title: %s
Description: %s
Current Priority: %s
Deadline: %s

CONTEXT INFORMATION:
%s

USER PREFERENCES:
%s

CURRENT WORKLOAD:
%s

Please provide a JSON response with the following structure:
{
    "priority_score": <float 0-100>,
    "suggested_deadline": "<ISO datetime or null>",
    "enhanced_description": "<improved description>",
    "suggested_categories": ["<category1>", "<category2>"],
    "confidence_score": <float 0-1>,
    "reasoning": "<explanation of your analysis>"
}

ANALYSIS GUIDELINES:
1. Priority Score (0-100):
   - 90-100: Critical/Urgent (immediate action required)
   - 70-89: High (important, needs attention soon)
   - 40-69: Medium (normal priority)
   - 0-39: Low (can be deferred)

2. Consider these factors for priority:
   - Urgency keywords: "urgent", "asap", "immediately", "critical"
   - Deadlines and time constraints
   - Dependencies and blocking factors
   - Business impact and stakeholder importance
   - Context from messages/email indicating urgency

3. Deadline Suggestions:
   - Base on urgency, complexity, and current workload
   - Consider existing deadlines and dependencies
   - Account for realistic time estimates

4. Enhanced Description:
   - Add relevant details from context
   - Clarify ambiguous requirements
   - Add actionable steps if helpful
   - Keep original intent intact

5. Category Suggestions:
   - Analyze content for domain/topic
   - Consider: Work, Personal, Health, Finance, Learning, etc.
   - Maximum 3 relevant categories
   - Use existing categories when appropriate

Respond with valid JSON only.`

// contextAnalysisTemplate slots, in order: content, source type, timestamp.
// Kept for per-entry insight extraction alongside the task prompt.
const contextAnalysisTemplate = `Analyze this context entry and extract insights relevant to task prioritization:

CONTENT: %s
SOURCE: %s
TIMESTAMP: %s

Extract:
1. Urgency indicators
2. Deadline mentions
3. Stakeholder importance
4. Dependencies
5. Business impact

Return JSON:
{
    "urgency_score": <float 0-1>,
    "deadline_mentions": ["<extracted dates/times>"],
    "stakeholders": ["<people mentioned>"],
    "keywords": ["<important terms>"],
    "sentiment": "<positive/negative/neutral>",
    "relevance_score": <float 0-1>
}`
