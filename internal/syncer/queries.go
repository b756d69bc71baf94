package syncer

const getUserSessionsQuery = `
query GetUserSessions($userID: ID!) {
  getUserSessions(userID: $userID) {
    sessionID
    userID
    timestamp
    audioPath
    status
    errorMessage
  }
}`

const getUserDailyInsightsQuery = `
query GetUserDailyInsights($userID: ID!) {
  getUserDailyInsights(userID: $userID) {
    userID
    date
    notes
    mood
  }
}`

const upsertDailyInsightMutation = `
mutation UpsertDailyInsight($userID: ID!, $date: Long!, $notes: String, $mood: Int) {
  upsertDailyInsight(userID: $userID, date: $date, notes: $notes, mood: $mood) {
    userID
    date
  }
}`
